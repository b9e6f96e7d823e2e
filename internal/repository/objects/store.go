package objects

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/jefftt/s3edit/internal/config"
)

// Store defines the object operations the editor depends on.
type Store interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte) error
}

// S3Store reads and writes objects through the S3 API.
type S3Store struct {
	// api is the S3 client; tests substitute a fake.
	api s3iface.S3API
}

// NewS3Store wraps an existing S3 client.
func NewS3Store(api s3iface.S3API) *S3Store {
	return &S3Store{api: api}
}

// NewSession builds an AWS session from cfg. The region comes from cfg,
// then from the environment and shared config, then config.DefaultRegion.
func NewSession(cfg *config.Config) (*session.Session, error) {
	awsConfig := aws.Config{}

	if cfg.Region != "" {
		awsConfig.Region = aws.String(cfg.Region)
	}

	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	if cfg.ForcePathStyle {
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            awsConfig,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	if aws.StringValue(sess.Config.Region) == "" {
		sess = sess.Copy(&aws.Config{Region: aws.String(config.DefaultRegion)})
	}

	return sess, nil
}

// NewFromConfig creates an S3Store backed by a real S3 client.
func NewFromConfig(cfg *config.Config) (*S3Store, error) {
	sess, err := NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return NewS3Store(s3.New(sess)), nil
}

// ListKeys returns every key under prefix, following continuation pages.
func (s *S3Store) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	var keys []string

	err := s.api.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, object := range page.Contents {
			if object.Key != nil {
				keys = append(keys, *object.Key)
			}
		}

		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
	}

	return keys, nil
}

// Get reads the whole object body.
func (s *S3Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	output, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}

	defer func() {
		_ = output.Body.Close()
	}()

	body, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
	}

	return body, nil
}

// Put overwrites the object with body.
func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", bucket, key, err)
	}

	return nil
}
