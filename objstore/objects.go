package objstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectInfo describes an object without its content.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// UploadFile streams a local file into bucket/key through the transfer
// manager, creating or overwriting the object.
func (c *Client) UploadFile(ctx context.Context, path, bucket, key string) error {
	if c.uploader == nil {
		return errors.New("s3 uploader is not configured")
	}

	f, err := os.Open(path)
	if err != nil {
		c.opLog("upload file", bucket, key).WithError(err).Error("open local file")
		return &TransferError{Op: "upload file", Bucket: bucket, Key: key, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.opLog("upload file", bucket, key).WithError(err).Error("stat local file")
		return &TransferError{Op: "upload file", Bucket: bucket, Key: key, Err: err}
	}

	_, err = c.uploader.UploadObject(ctx, &transfermanager.UploadObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		wrapped := classify("upload file", bucket, key, err)
		c.opLog("upload file", bucket, key).WithError(err).Error("upload failed")
		return wrapped
	}

	c.opLog("upload file", bucket, key).WithField("bytes", info.Size()).Debug("uploaded")
	return nil
}

// UploadBytes writes an in-memory buffer to bucket/key, creating or
// overwriting the object.
func (c *Client) UploadBytes(ctx context.Context, data []byte, bucket, key string) error {
	if c.api == nil {
		return errors.New("s3 api client is not configured")
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		wrapped := classify("upload bytes", bucket, key, err)
		c.opLog("upload bytes", bucket, key).WithError(err).Error("upload failed")
		return wrapped
	}

	c.opLog("upload bytes", bucket, key).WithField("bytes", len(data)).Debug("uploaded")
	return nil
}

// GetObject returns the full body of bucket/key. Absent buckets or keys
// surface as *NotFoundError.
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if c.api == nil {
		return nil, errors.New("s3 api client is not configured")
	}

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := classify("get object", bucket, key, err)
		c.opLog("get object", bucket, key).WithError(err).Error("get failed")
		return nil, wrapped
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		wrapped := &TransferError{Op: "get object", Bucket: bucket, Key: key, Err: fmt.Errorf("read object body: %w", err)}
		c.opLog("get object", bucket, key).WithError(err).Error("read body failed")
		return nil, wrapped
	}

	c.opLog("get object", bucket, key).WithField("bytes", len(data)).Debug("retrieved")
	return data, nil
}

// DownloadFile writes the body of bucket/key to a local file, creating
// parent directories as needed.
func (c *Client) DownloadFile(ctx context.Context, bucket, key, path string) error {
	data, err := c.GetObject(ctx, bucket, key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &TransferError{Op: "download file", Bucket: bucket, Key: key, Err: err}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		c.opLog("download file", bucket, key).WithError(err).Error("write local file")
		return &TransferError{Op: "download file", Bucket: bucket, Key: key, Err: err}
	}
	return nil
}

// StatObject returns object metadata without downloading the body.
func (c *Client) StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	if c.api == nil {
		return nil, errors.New("s3 api client is not configured")
	}

	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := classify("stat object", bucket, key, err)
		c.opLog("stat object", bucket, key).WithError(err).Error("head failed")
		return nil, wrapped
	}

	info := &ObjectInfo{
		Key:         key,
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        aws.ToString(out.ETag),
		ContentType: aws.ToString(out.ContentType),
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

// ObjectExists reports whether bucket/key exists. A NotFound response maps
// to (false, nil); other failures are returned.
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.StatObject(ctx, bucket, key)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListObjects returns every key in bucket matching prefix, draining all
// listing pages. An empty prefix matches every object. No matches yields an
// empty slice, not an error. As with the other read operations, a missing
// bucket surfaces as *NotFoundError rather than *TransferError, and
// DeletePrefix inherits that on its listing step.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	if c.api == nil {
		return nil, errors.New("s3 api client is not configured")
	}
	if c.newListObjectsV2Paginator == nil {
		return nil, errors.New("s3 paginator factory is not configured")
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	keys := make([]string, 0)
	paginator := c.newListObjectsV2Paginator(c.api, input)
	if paginator == nil {
		return nil, errors.New("s3 paginator is not configured")
	}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			wrapped := classify("list objects", bucket, prefix, err)
			c.opLog("list objects", bucket, prefix).WithError(err).Error("list failed")
			return nil, wrapped
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			keys = append(keys, *obj.Key)
		}
	}

	c.opLog("list objects", bucket, prefix).WithField("count", len(keys)).Debug("listed")
	return keys, nil
}

// DeleteObject removes bucket/key. S3 answers 204 for keys that do not
// exist, so deleting a missing key succeeds.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	if c.api == nil {
		return errors.New("s3 api client is not configured")
	}

	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		wrapped := classify("delete object", bucket, key, err)
		c.opLog("delete object", bucket, key).WithError(err).Error("delete failed")
		return wrapped
	}

	c.opLog("delete object", bucket, key).Debug("deleted")
	return nil
}

// copySource encodes bucket/key for the x-amz-copy-source header. Key
// segments are escaped individually so '/' separators survive.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// CopyObject performs a server-side copy of srcBucket/srcKey to
// dstBucket/dstKey.
func (c *Client) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if c.api == nil {
		return errors.New("s3 api client is not configured")
	}

	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(copySource(srcBucket, srcKey)),
	})
	if err != nil {
		wrapped := classify("copy object", dstBucket, dstKey, err)
		c.opLog("copy object", dstBucket, dstKey).WithField("source", srcBucket+"/"+srcKey).WithError(err).Error("copy failed")
		return wrapped
	}

	c.opLog("copy object", dstBucket, dstKey).WithField("source", srcBucket+"/"+srcKey).Debug("copied")
	return nil
}
