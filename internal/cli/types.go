package cli

import "time"

type rmOptions struct {
	Recursive bool
}

type cpOptions struct {
	ToBucket string
}

type presignOptions struct {
	Put    bool
	Expiry time.Duration
}
