package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"s3ctl/internal/config"
	"s3ctl/objstore"
)

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "s3ctl.toml"
	}
	return filepath.Join(home, ".config", "s3ctl", "config.toml")
}

func resolveBucket(cfg *config.Config, flagBucket string) (string, error) {
	if flagBucket != "" {
		return flagBucket, nil
	}
	if cfg.Bucket != "" {
		return cfg.Bucket, nil
	}
	return "", errors.New("no bucket configured: set bucket in the config file, " + config.EnvBucket + ", or -bucket")
}

func writeObjectInfo(w io.Writer, info *objstore.ObjectInfo) {
	fmt.Fprintf(w, "key: %s\n", info.Key)
	fmt.Fprintf(w, "size: %d\n", info.Size)
	if info.ETag != "" {
		fmt.Fprintf(w, "etag: %s\n", info.ETag)
	}
	if info.ContentType != "" {
		fmt.Fprintf(w, "content-type: %s\n", info.ContentType)
	}
	if !info.LastModified.IsZero() {
		fmt.Fprintf(w, "last-modified: %s\n", info.LastModified.Format("2006-01-02 15:04:05Z07:00"))
	}
}
