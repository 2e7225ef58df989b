package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"s3ctl/internal/config"
	"s3ctl/objstore"

	"github.com/sirupsen/logrus"
)

// objectStore is the slice of the objstore client the CLI drives. Tests
// swap in a recording fake.
type objectStore interface {
	UploadFile(ctx context.Context, filePath, bucket, key string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	DownloadFile(ctx context.Context, bucket, key, filePath string) error
	StatObject(ctx context.Context, bucket, key string) (*objstore.ObjectInfo, error)
	ListBuckets(ctx context.Context) ([]string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	DeletePrefix(ctx context.Context, bucket, prefix string) error
	CreateBucket(ctx context.Context, bucket string) error
	DeleteBucket(ctx context.Context, bucket string) error
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
	PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

type storeFactory func(cfg *config.Config, verbose bool) (objectStore, error)

func Run(args []string) error {
	return run(args, os.Stdout, newStore)
}

func newStore(cfg *config.Config, verbose bool) (objectStore, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	client, err := objstore.New(objstore.Config{
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	return client, nil
}

func run(args []string, stdout io.Writer, newStore storeFactory) error {
	fs := flag.NewFlagSet("s3ctl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	configPath := defaultConfigPath()
	fs.StringVar(&configPath, "config", configPath, "path to config file")
	var bucketFlag string
	fs.StringVar(&bucketFlag, "bucket", "", "bucket to operate on (overrides config)")
	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return usageError()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := newStore(cfg, verbose)
	if err != nil {
		return err
	}

	ctx := context.Background()

	switch rest[0] {
	case "buckets":
		if len(rest) != 1 {
			return errors.New("usage: s3ctl buckets")
		}
		names, err := store.ListBuckets(ctx)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return nil

	case "mb":
		if len(rest) != 2 {
			return errors.New("usage: s3ctl mb <bucket>")
		}
		if err := store.CreateBucket(ctx, rest[1]); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created bucket %s\n", rest[1])
		return nil

	case "rb":
		if len(rest) != 2 {
			return errors.New("usage: s3ctl rb <bucket>")
		}
		if err := store.DeleteBucket(ctx, rest[1]); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted bucket %s\n", rest[1])
		return nil

	case "ls":
		if len(rest) > 2 {
			return errors.New("usage: s3ctl ls [prefix]")
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		prefix := ""
		if len(rest) == 2 {
			prefix = rest[1]
		}
		keys, err := store.ListObjects(ctx, bucket, prefix)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintln(stdout, key)
		}
		return nil

	case "put":
		if len(rest) < 2 || len(rest) > 3 {
			return errors.New("usage: s3ctl put <file> [key]")
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		filePath := rest[1]
		key := path.Base(filePath)
		if len(rest) == 3 {
			key = rest[2]
		}
		if err := store.UploadFile(ctx, filePath, bucket, key); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "uploaded %s to %s/%s\n", filePath, bucket, key)
		return nil

	case "cat":
		if len(rest) != 2 {
			return errors.New("usage: s3ctl cat <key>")
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		data, err := store.GetObject(ctx, bucket, rest[1])
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err

	case "get":
		if len(rest) != 3 {
			return errors.New("usage: s3ctl get <key> <file>")
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		if err := store.DownloadFile(ctx, bucket, rest[1], rest[2]); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "downloaded %s/%s to %s\n", bucket, rest[1], rest[2])
		return nil

	case "rm":
		opts, target, err := parseRmArgs(rest[1:])
		if err != nil {
			return err
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		if opts.Recursive {
			if err := store.DeletePrefix(ctx, bucket, target); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "deleted objects under %s/%s\n", bucket, target)
			return nil
		}
		if err := store.DeleteObject(ctx, bucket, target); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s/%s\n", bucket, target)
		return nil

	case "stat":
		if len(rest) != 2 {
			return errors.New("usage: s3ctl stat <key>")
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		info, err := store.StatObject(ctx, bucket, rest[1])
		if err != nil {
			return err
		}
		writeObjectInfo(stdout, info)
		return nil

	case "cp":
		opts, srcKey, dstKey, err := parseCpArgs(rest[1:])
		if err != nil {
			return err
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		dstBucket := bucket
		if opts.ToBucket != "" {
			dstBucket = opts.ToBucket
		}
		if err := store.CopyObject(ctx, bucket, srcKey, dstBucket, dstKey); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "copied %s/%s to %s/%s\n", bucket, srcKey, dstBucket, dstKey)
		return nil

	case "presign":
		opts, key, err := parsePresignArgs(rest[1:])
		if err != nil {
			return err
		}
		bucket, err := resolveBucket(cfg, bucketFlag)
		if err != nil {
			return err
		}
		var url string
		if opts.Put {
			url, err = store.PresignPut(ctx, bucket, key, opts.Expiry)
		} else {
			url, err = store.PresignGet(ctx, bucket, key, opts.Expiry)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, url)
		return nil

	default:
		return usageError()
	}
}

func usageError() error {
	return errors.New("usage: s3ctl [-config path] [-bucket name] [-verbose] buckets | mb <bucket> | rb <bucket> | ls [prefix] | put <file> [key] | cat <key> | get <key> <file> | rm [-r] <key|prefix> | stat <key> | cp [-to-bucket name] <src> <dst> | presign [-put] [-expiry d] <key>")
}
