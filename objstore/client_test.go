package objstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/transfermanager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

type fakeUploader struct {
	lastInput *transfermanager.UploadObjectInput
	body      []byte
	err       error
}

// UploadObject drains the body while the caller still holds it open; the
// real transfer manager consumes it before returning too.
func (f *fakeUploader) UploadObject(_ context.Context, input *transfermanager.UploadObjectInput, _ ...func(*transfermanager.Options)) (*transfermanager.UploadObjectOutput, error) {
	f.lastInput = input
	if input.Body != nil {
		data, err := io.ReadAll(input.Body)
		if err != nil {
			return nil, err
		}
		f.body = data
	}
	if f.err != nil {
		return nil, f.err
	}
	return &transfermanager.UploadObjectOutput{}, nil
}

type fakeS3API struct {
	putFn          func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	getFn          func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	headFn         func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	deleteFn       func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	copyFn         func(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	listFn         func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	listBucketsFn  func(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	createBucketFn func(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	deleteBucketFn func(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	headBucketFn   func(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

func (f *fakeS3API) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putFn == nil {
		return nil, errors.New("unexpected put object call")
	}
	return f.putFn(ctx, params, optFns...)
}

func (f *fakeS3API) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getFn == nil {
		return nil, errors.New("unexpected get object call")
	}
	return f.getFn(ctx, params, optFns...)
}

func (f *fakeS3API) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headFn == nil {
		return nil, errors.New("unexpected head object call")
	}
	return f.headFn(ctx, params, optFns...)
}

func (f *fakeS3API) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteFn == nil {
		return nil, errors.New("unexpected delete object call")
	}
	return f.deleteFn(ctx, params, optFns...)
}

func (f *fakeS3API) CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if f.copyFn == nil {
		return nil, errors.New("unexpected copy object call")
	}
	return f.copyFn(ctx, params, optFns...)
}

func (f *fakeS3API) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listFn == nil {
		return nil, errors.New("unexpected list objects call")
	}
	return f.listFn(ctx, params, optFns...)
}

func (f *fakeS3API) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if f.listBucketsFn == nil {
		return nil, errors.New("unexpected list buckets call")
	}
	return f.listBucketsFn(ctx, params, optFns...)
}

func (f *fakeS3API) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	if f.createBucketFn == nil {
		return nil, errors.New("unexpected create bucket call")
	}
	return f.createBucketFn(ctx, params, optFns...)
}

func (f *fakeS3API) DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	if f.deleteBucketFn == nil {
		return nil, errors.New("unexpected delete bucket call")
	}
	return f.deleteBucketFn(ctx, params, optFns...)
}

func (f *fakeS3API) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headBucketFn == nil {
		return nil, errors.New("unexpected head bucket call")
	}
	return f.headBucketFn(ctx, params, optFns...)
}

type fakePresigner struct {
	getFn func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	putFn func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.getFn == nil {
		return nil, errors.New("unexpected presign get call")
	}
	return f.getFn(ctx, params, optFns...)
}

func (f *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.putFn == nil {
		return nil, errors.New("unexpected presign put call")
	}
	return f.putFn(ctx, params, optFns...)
}

type paginatorStep struct {
	page *s3.ListObjectsV2Output
	err  error
}

type fakePaginator struct {
	steps []paginatorStep
	index int
}

func (p *fakePaginator) HasMorePages() bool {
	return p.index < len(p.steps)
}

func (p *fakePaginator) NextPage(_ context.Context, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if p.index >= len(p.steps) {
		return nil, errors.New("no more pages")
	}
	step := p.steps[p.index]
	p.index++
	if step.err != nil {
		return nil, step.err
	}
	return step.page, nil
}

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(api *fakeS3API) *Client {
	return &Client{
		api:    api,
		region: defaultRegion,
		log:    testLogger(),
		newListObjectsV2Paginator: func(_ s3.ListObjectsV2APIClient, input *s3.ListObjectsV2Input) listObjectsV2Paginator {
			return &fakePaginator{}
		},
	}
}

func strPtr(v string) *string { return &v }

func TestNewRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "missing access key", cfg: Config{SecretKey: "sk"}, want: "access key is required"},
		{name: "missing secret key", cfg: Config{AccessKey: "ak"}, want: "secret key is required"},
		{name: "blank access key", cfg: Config{AccessKey: "   ", SecretKey: "sk"}, want: "access key is required"},
		{name: "blank secret key", cfg: Config{AccessKey: "ak", SecretKey: "  "}, want: "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if err == nil {
				t.Fatal("expected credentials error")
			}
			var credErr *CredentialsError
			if !errors.As(err, &credErr) {
				t.Fatalf("expected *CredentialsError, got %T: %v", err, err)
			}
			if credErr.Reason != tt.want {
				t.Fatalf("reason mismatch: got %q want %q", credErr.Reason, tt.want)
			}
		})
	}
}

func TestNewRejectsBadEndpoint(t *testing.T) {
	_, err := New(Config{AccessKey: "ak", SecretKey: "sk", Endpoint: "://bad"})
	if err == nil || !strings.Contains(err.Error(), "valid http(s) URL") {
		t.Fatalf("expected malformed endpoint error, got: %v", err)
	}

	_, err = New(Config{AccessKey: "ak", SecretKey: "sk", Endpoint: "ftp://example.com"})
	if err == nil || !strings.Contains(err.Error(), "must use http or https") {
		t.Fatalf("expected endpoint scheme error, got: %v", err)
	}

	_, err = New(Config{AccessKey: "ak", SecretKey: "sk", Endpoint: "http://"})
	if err == nil || !strings.Contains(err.Error(), "missing host") {
		t.Fatalf("expected missing host error, got: %v", err)
	}
}

func TestNewDefaultsRegion(t *testing.T) {
	c, err := New(Config{AccessKey: "ak", SecretKey: "sk"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Region() != "us-east-1" {
		t.Fatalf("region mismatch: got %q want %q", c.Region(), "us-east-1")
	}

	c, err = New(Config{AccessKey: "ak", SecretKey: "sk", Region: "eu-west-2"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if c.Region() != "eu-west-2" {
		t.Fatalf("region mismatch: got %q want %q", c.Region(), "eu-west-2")
	}
}

func TestAWSListObjectsV2PaginatorNilInner(t *testing.T) {
	p := &awsListObjectsV2Paginator{}
	if p.HasMorePages() {
		t.Fatal("expected no pages when paginator is nil")
	}
	if _, err := p.NextPage(context.Background()); err == nil || !strings.Contains(err.Error(), "s3 paginator is not configured") {
		t.Fatalf("expected nil paginator error, got: %v", err)
	}
}

func TestUnconfiguredClientGuards(t *testing.T) {
	c := &Client{log: testLogger()}

	if err := c.UploadBytes(context.Background(), []byte("x"), "b", "k"); err == nil || !strings.Contains(err.Error(), "s3 api client is not configured") {
		t.Fatalf("expected missing api error, got: %v", err)
	}
	if err := c.UploadFile(context.Background(), "nope", "b", "k"); err == nil || !strings.Contains(err.Error(), "s3 uploader is not configured") {
		t.Fatalf("expected missing uploader error, got: %v", err)
	}
	if _, err := c.GetObject(context.Background(), "b", "k"); err == nil || !strings.Contains(err.Error(), "s3 api client is not configured") {
		t.Fatalf("expected missing api error, got: %v", err)
	}
	if _, err := c.ListObjects(context.Background(), "b", ""); err == nil || !strings.Contains(err.Error(), "s3 api client is not configured") {
		t.Fatalf("expected missing api error, got: %v", err)
	}
	if _, err := c.PresignGet(context.Background(), "b", "k", 0); err == nil || !strings.Contains(err.Error(), "s3 presign client is not configured") {
		t.Fatalf("expected missing presigner error, got: %v", err)
	}

	c.api = &fakeS3API{}
	if _, err := c.ListObjects(context.Background(), "b", ""); err == nil || !strings.Contains(err.Error(), "s3 paginator factory is not configured") {
		t.Fatalf("expected missing paginator factory error, got: %v", err)
	}

	c.newListObjectsV2Paginator = func(_ s3.ListObjectsV2APIClient, _ *s3.ListObjectsV2Input) listObjectsV2Paginator {
		return nil
	}
	if _, err := c.ListObjects(context.Background(), "b", ""); err == nil || !strings.Contains(err.Error(), "s3 paginator is not configured") {
		t.Fatalf("expected missing paginator error, got: %v", err)
	}
}
