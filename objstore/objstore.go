// Package objstore provides a narrow client for S3 and S3-compatible
// object storage: bucket and object CRUD, prefix listing, presigned URLs,
// and a composite delete-by-prefix operation. It adds no retries, caching,
// or timeout policy of its own; cancellation and deadlines come from the
// caller's context and everything else from the SDK defaults.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

const defaultRegion = "us-east-1"

// Config holds the construction inputs for a Client. AccessKey and
// SecretKey are required; Region defaults to us-east-1; Endpoint, when set,
// must be an http(s) URL and switches the client to path-style addressing
// for S3-compatible services. Logger is optional and silent by default.
type Config struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
	Logger    logrus.FieldLogger
}

// s3API is the subset of the S3 service client the Client calls.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type objectUploader interface {
	UploadObject(ctx context.Context, input *transfermanager.UploadObjectInput, optFns ...func(*transfermanager.Options)) (*transfermanager.UploadObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type listObjectsV2Paginator interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type awsListObjectsV2Paginator struct {
	inner *s3.ListObjectsV2Paginator
}

func (p *awsListObjectsV2Paginator) HasMorePages() bool {
	return p.inner != nil && p.inner.HasMorePages()
}

func (p *awsListObjectsV2Paginator) NextPage(ctx context.Context, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if p.inner == nil {
		return nil, errors.New("s3 paginator is not configured")
	}
	return p.inner.NextPage(ctx, optFns...)
}

// Client is a handle bound to one set of credentials, a region, and an
// optional custom endpoint. It is immutable after construction and safe for
// concurrent use; the composite DeletePrefix operation is not isolated from
// concurrent writers (see its documentation).
type Client struct {
	api       s3API
	uploader  objectUploader
	presigner presignAPI
	region    string
	log       logrus.FieldLogger

	newListObjectsV2Paginator func(client s3.ListObjectsV2APIClient, input *s3.ListObjectsV2Input) listObjectsV2Paginator
}

// New builds a Client from static credentials. Missing or blank credentials
// fail immediately with *CredentialsError; no network call is made during
// construction.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return nil, &CredentialsError{Reason: "access key is required"}
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, &CredentialsError{Reason: "secret key is required"}
	}
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Custom endpoints are typically S3-compatible servers that
			// do not resolve virtual-hosted bucket names.
			o.UsePathStyle = true
		}
	})

	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	c := &Client{
		api:       s3Client,
		uploader:  transfermanager.New(s3Client),
		presigner: s3.NewPresignClient(s3Client),
		region:    region,
		log:       logger,
		newListObjectsV2Paginator: func(client s3.ListObjectsV2APIClient, input *s3.ListObjectsV2Input) listObjectsV2Paginator {
			return &awsListObjectsV2Paginator{inner: s3.NewListObjectsV2Paginator(client, input)}
		},
	}
	c.log.WithField("region", region).Debug("object store client initialized")
	return c, nil
}

// Region reports the region the client was bound to at construction.
func (c *Client) Region() string {
	return c.region
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("endpoint must be a valid http(s) URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("endpoint must use http or https")
	}
	if u.Host == "" {
		return errors.New("endpoint must be a valid http(s) URL: missing host")
	}
	return nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func (c *Client) opLog(op, bucket, key string) *logrus.Entry {
	fields := logrus.Fields{"op": op, "bucket": bucket}
	if key != "" {
		fields["key"] = key
	}
	return c.log.WithFields(fields)
}
