package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/edvin/s3gate/internal/core"
	"github.com/edvin/s3gate/internal/model"
)

const (
	defaultMaxKeys = 100
	maxMaxKeys     = 1000
)

// S3API is the subset of the S3 client used for browsing.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// PresignAPI is the subset of the S3 presign client used for upload URLs.
type PresignAPI interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ S3API      = (*s3.Client)(nil)
	_ PresignAPI = (*s3.PresignClient)(nil)
)

// ResourceClient performs read operations against S3 using per-request
// temporary credentials. A fresh client is built for every call; nothing is
// cached.
type ResourceClient struct {
	region string
	logger zerolog.Logger

	// Client factories, overridable in tests.
	newClient    func(creds model.Credentials) S3API
	newPresigner func(creds model.Credentials) PresignAPI
}

func NewResourceClient(cfg aws.Config, logger zerolog.Logger) *ResourceClient {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	c := &ResourceClient{
		region: region,
		logger: logger.With().Str("component", "resource-client").Logger(),
	}
	c.newClient = func(creds model.Credentials) S3API { return c.s3Client(creds) }
	c.newPresigner = func(creds model.Credentials) PresignAPI {
		return s3.NewPresignClient(c.s3Client(creds))
	}
	return c
}

// s3Client returns an S3 client bound to the given temporary credentials.
func (c *ResourceClient) s3Client(creds model.Credentials) *s3.Client {
	return s3.New(s3.Options{
		Region: c.region,
		Credentials: credentials.NewStaticCredentialsProvider(
			creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
	})
}

// ListBuckets lists the buckets visible to the assumed role. It doubles as
// the verification probe: a role that cannot list buckets is rejected at
// verify time.
func (c *ResourceClient) ListBuckets(ctx context.Context, creds model.Credentials) ([]model.Bucket, error) {
	out, err := c.newClient(creds).ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, &core.AccessError{Reason: providerReason(err)}
	}

	buckets := make([]model.Bucket, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		buckets = append(buckets, model.Bucket{
			Name:         aws.ToString(b.Name),
			CreationDate: b.CreationDate,
		})
	}
	return buckets, nil
}

// ListObjectsInput selects a page of a bucket listing. ContinuationToken is
// the provider's opaque cursor from a previous page.
type ListObjectsInput struct {
	Bucket            string
	Prefix            string
	MaxKeys           int32
	ContinuationToken string
}

func (c *ResourceClient) ListObjects(ctx context.Context, creds model.Credentials, in ListObjectsInput) (*model.ObjectPage, error) {
	maxKeys := in.MaxKeys
	if maxKeys <= 0 {
		maxKeys = defaultMaxKeys
	}
	if maxKeys > maxMaxKeys {
		maxKeys = maxMaxKeys
	}

	req := &s3.ListObjectsV2Input{
		Bucket:  aws.String(in.Bucket),
		MaxKeys: aws.Int32(maxKeys),
	}
	if in.Prefix != "" {
		req.Prefix = aws.String(in.Prefix)
	}
	if in.ContinuationToken != "" {
		req.ContinuationToken = aws.String(in.ContinuationToken)
	}

	out, err := c.newClient(creds).ListObjectsV2(ctx, req)
	if err != nil {
		return nil, &core.AccessError{Reason: providerReason(err)}
	}

	page := &model.ObjectPage{
		Objects:               make([]model.Object, 0, len(out.Contents)),
		IsTruncated:           aws.ToBool(out.IsTruncated),
		NextContinuationToken: out.NextContinuationToken,
	}
	for _, obj := range out.Contents {
		page.Objects = append(page.Objects, model.Object{
			Key:          aws.ToString(obj.Key),
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
		})
	}
	return page, nil
}

// PresignUploadInput describes a single-key upload authorization.
type PresignUploadInput struct {
	Bucket      string
	Key         string
	ContentType string
	TTL         time.Duration
}

// PresignUpload mints a time-boxed URL authorizing a PUT of exactly the given
// key. The browser uploads directly; the object bytes never transit this
// server.
func (c *ResourceClient) PresignUpload(ctx context.Context, creds model.Credentials, in PresignUploadInput) (string, error) {
	req := &s3.PutObjectInput{
		Bucket: aws.String(in.Bucket),
		Key:    aws.String(in.Key),
	}
	if in.ContentType != "" {
		req.ContentType = aws.String(in.ContentType)
	}

	signed, err := c.newPresigner(creds).PresignPutObject(ctx, req, s3.WithPresignExpires(in.TTL))
	if err != nil {
		return "", fmt.Errorf("presign upload for %s/%s: %w", in.Bucket, in.Key, err)
	}
	return signed.URL, nil
}
