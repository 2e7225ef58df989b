package cli

import (
	"errors"
	"flag"
	"os"
	"time"
)

func parseRmArgs(args []string) (rmOptions, string, error) {
	rmFS := flag.NewFlagSet("rm", flag.ContinueOnError)
	rmFS.SetOutput(os.Stderr)

	var opts rmOptions
	rmFS.BoolVar(&opts.Recursive, "r", false, "delete every object under the given prefix")

	if err := rmFS.Parse(args); err != nil {
		return rmOptions{}, "", err
	}

	rest := rmFS.Args()
	if len(rest) != 1 {
		return rmOptions{}, "", errors.New("usage: s3ctl rm [-r] <key|prefix>")
	}
	return opts, rest[0], nil
}

func parseCpArgs(args []string) (cpOptions, string, string, error) {
	cpFS := flag.NewFlagSet("cp", flag.ContinueOnError)
	cpFS.SetOutput(os.Stderr)

	var opts cpOptions
	cpFS.StringVar(&opts.ToBucket, "to-bucket", "", "destination bucket (defaults to the source bucket)")

	if err := cpFS.Parse(args); err != nil {
		return cpOptions{}, "", "", err
	}

	rest := cpFS.Args()
	if len(rest) != 2 {
		return cpOptions{}, "", "", errors.New("usage: s3ctl cp [-to-bucket name] <src-key> <dst-key>")
	}
	return opts, rest[0], rest[1], nil
}

func parsePresignArgs(args []string) (presignOptions, string, error) {
	presignFS := flag.NewFlagSet("presign", flag.ContinueOnError)
	presignFS.SetOutput(os.Stderr)

	var opts presignOptions
	presignFS.BoolVar(&opts.Put, "put", false, "presign an upload instead of a download")
	presignFS.DurationVar(&opts.Expiry, "expiry", 15*time.Minute, "how long the URL stays valid")

	if err := presignFS.Parse(args); err != nil {
		return presignOptions{}, "", err
	}

	rest := presignFS.Args()
	if len(rest) != 1 {
		return presignOptions{}, "", errors.New("usage: s3ctl presign [-put] [-expiry d] <key>")
	}
	if opts.Expiry <= 0 {
		return presignOptions{}, "", errors.New("expiry must be positive")
	}
	return opts, rest[0], nil
}
