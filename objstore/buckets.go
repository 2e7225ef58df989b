package objstore

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ListBuckets returns the names of all buckets reachable with the client's
// credentials, in the order the service reports them.
func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	if c.api == nil {
		return nil, errors.New("s3 api client is not configured")
	}

	out, err := c.api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		wrapped := classify("list buckets", "", "", err)
		c.log.WithField("op", "list buckets").WithError(err).Error("list failed")
		return nil, wrapped
	}

	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}

// CreateBucket creates a bucket in the client's region. S3 rejects a
// LocationConstraint of us-east-1, so the configuration block is set only
// for other regions.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	if c.api == nil {
		return errors.New("s3 api client is not configured")
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if c.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}

	if _, err := c.api.CreateBucket(ctx, input); err != nil {
		wrapped := classify("create bucket", bucket, "", err)
		c.opLog("create bucket", bucket, "").WithError(err).Error("create failed")
		return wrapped
	}

	c.opLog("create bucket", bucket, "").Debug("created")
	return nil
}

// DeleteBucket removes a bucket. The service rejects deletion of non-empty
// buckets; that rejection surfaces as *TransferError.
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	if c.api == nil {
		return errors.New("s3 api client is not configured")
	}

	if _, err := c.api.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucket),
	}); err != nil {
		wrapped := classify("delete bucket", bucket, "", err)
		c.opLog("delete bucket", bucket, "").WithError(err).Error("delete failed")
		return wrapped
	}

	c.opLog("delete bucket", bucket, "").Debug("deleted")
	return nil
}

// BucketExists reports whether a bucket exists. A NotFound response maps to
// (false, nil); other failures (e.g. denied access) are returned.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if c.api == nil {
		return false, errors.New("s3 api client is not configured")
	}

	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		wrapped := classify("head bucket", bucket, "", err)
		var nf *NotFoundError
		if errors.As(wrapped, &nf) {
			return false, nil
		}
		c.opLog("head bucket", bucket, "").WithError(err).Error("head failed")
		return false, wrapped
	}
	return true, nil
}
