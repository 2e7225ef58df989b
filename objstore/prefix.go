package objstore

import (
	"context"
	"strings"
)

// normalizePrefix appends the '/' separator to a non-empty prefix that does
// not already end with one, so "logs" and "logs/" select the same keys.
// The empty prefix is left alone and matches every object.
func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		return prefix + "/"
	}
	return prefix
}

// DeletePrefix deletes every object in bucket whose key starts with the
// normalized prefix: list first, then delete each key sequentially. The
// operation is not atomic. A failure partway through leaves earlier
// deletions in place and reports only the terminal error. It is also not
// isolated from concurrent writers, whose objects may appear after the
// listing step. An empty prefix deletes every object in the bucket; the
// caller bears responsibility for avoiding destructive calls.
func (c *Client) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	prefix = normalizePrefix(prefix)

	keys, err := c.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.DeleteObject(ctx, bucket, key); err != nil {
			return err
		}
	}

	c.opLog("delete prefix", bucket, prefix).WithField("count", len(keys)).Debug("prefix deleted")
	return nil
}
