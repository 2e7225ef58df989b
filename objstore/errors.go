package objstore

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// CredentialsError reports missing or incomplete credentials at
// construction time. It is never retried and never deferred to first use.
type CredentialsError struct {
	Reason string
}

func (e *CredentialsError) Error() string {
	return "credentials: " + e.Reason
}

// NotFoundError reports a bucket or object that does not exist on a read
// path. Key is empty when the bucket itself was the target.
type NotFoundError struct {
	Bucket string
	Key    string
	Err    error
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("bucket %q not found", e.Bucket)
	}
	return fmt.Sprintf("object %s/%s not found", e.Bucket, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// TransferError reports any other service rejection: permissions, naming
// rules, quota, network failures. The underlying SDK error is preserved for
// errors.Is/As inspection; nothing is retried at this layer.
type TransferError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *TransferError) Error() string {
	target := e.Bucket
	if e.Key != "" {
		target = e.Bucket + "/" + e.Key
	}
	if target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// classify maps an SDK failure to the package taxonomy. NoSuchKey,
// NoSuchBucket, and 404-coded API errors become NotFoundError; everything
// else becomes TransferError.
func classify(op, bucket, key string, err error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return &NotFoundError{Bucket: bucket, Key: key, Err: err}
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return &NotFoundError{Bucket: bucket, Err: err}
	}
	var missing *types.NotFound
	if errors.As(err, &missing) {
		return &NotFoundError{Bucket: bucket, Key: key, Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return &NotFoundError{Bucket: bucket, Key: key, Err: err}
		}
	}
	if statusCode(err) == http.StatusNotFound {
		return &NotFoundError{Bucket: bucket, Key: key, Err: err}
	}

	return &TransferError{Op: op, Bucket: bucket, Key: key, Err: err}
}

// statusCode digs the HTTP status out of a smithy response error chain,
// or returns 0 when there is none (e.g. transport failures).
func statusCode(err error) int {
	type httpStatus interface {
		HTTPStatusCode() int
	}
	var hs httpStatus
	if errors.As(err, &hs) {
		return hs.HTTPStatusCode()
	}
	return 0
}
