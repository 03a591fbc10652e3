// Package storage adapts the S3 API to the narrow put/delete surface the
// service needs for profile pictures.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Aquabet/webapp/internal/config"
)

// S3API is the subset of the S3 client used here, extracted for mocking.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type ObjectStore struct {
	client  S3API
	bucket  string
	baseURL string
}

func NewObjectStore(ctx context.Context, awsCfg config.AWSConfig, s3Cfg config.S3Config) (*ObjectStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsCfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s3Cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Cfg.Endpoint)
		}
		o.UsePathStyle = s3Cfg.UsePathStyle
	})

	return &ObjectStore{
		client:  client,
		bucket:  s3Cfg.Bucket,
		baseURL: objectBaseURL(s3Cfg.Bucket, awsCfg.Region, s3Cfg.Endpoint),
	}, nil
}

// NewObjectStoreWithClient wires a prebuilt client, used by tests.
func NewObjectStoreWithClient(client S3API, bucket, region, endpoint string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, baseURL: objectBaseURL(bucket, region, endpoint)}
}

// objectBaseURL is the endpoint override in path style when one is set,
// otherwise the virtual-hosted AWS form.
func objectBaseURL(bucket, region, endpoint string) string {
	if endpoint != "" {
		return strings.TrimSuffix(endpoint, "/") + "/" + bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}

func (s *ObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}

func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// ObjectURL renders the fully qualified location stored alongside the image
// row.
func (s *ObjectStore) ObjectURL(key string) string {
	return s.baseURL + "/" + key
}

// KeyFromURL recovers the storage key from a URL produced by ObjectURL.
func (s *ObjectStore) KeyFromURL(url string) string {
	return strings.TrimPrefix(url, s.baseURL+"/")
}
