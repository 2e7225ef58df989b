package objstore

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignGet returns a presigned download URL for bucket/key valid for the
// given duration. Presigning is local work; the URL is not checked against
// the service, so it may reference a key that does not exist.
func (c *Client) PresignGet(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if c.presigner == nil {
		return "", errors.New("s3 presign client is not configured")
	}

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		wrapped := classify("presign get", bucket, key, err)
		c.opLog("presign get", bucket, key).WithError(err).Error("presign failed")
		return "", wrapped
	}
	return req.URL, nil
}

// PresignPut returns a presigned upload URL for bucket/key valid for the
// given duration.
func (c *Client) PresignPut(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if c.presigner == nil {
		return "", errors.New("s3 presign client is not configured")
	}

	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		wrapped := classify("presign put", bucket, key, err)
		c.opLog("presign put", bucket, key).WithError(err).Error("presign failed")
		return "", wrapped
	}
	return req.URL, nil
}
