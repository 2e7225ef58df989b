package main

import (
	"fmt"
	"os"

	"s3ctl/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "s3ctl: %v\n", err)
		os.Exit(1)
	}
}
