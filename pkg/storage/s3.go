// Package storage uploads user-submitted images to S3-compatible object
// storage and resolves their public URLs. Records in the database keep
// only the resulting URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid config")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
)

// Config holds S3 settings. Endpoint and ForcePathStyle support
// S3-compatible services like MinIO in development.
type Config struct {
	Bucket         string        `env:"S3_BUCKET,required"`
	Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string        `env:"S3_ACCESS_KEY_ID,required"`
	SecretKey      string        `env:"S3_SECRET_KEY,required"`
	Endpoint       string        `env:"S3_ENDPOINT"`
	BaseURL        string        `env:"S3_BASE_URL,required"` // public URL base for serving files
	ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	UploadTimeout  time.Duration `env:"S3_UPLOAD_TIMEOUT" envDefault:"30s"`
}

// S3Client is the subset of the AWS SDK client used by ImageStore.
// Declared as an interface so tests can substitute a fake.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ImageStore stores images in a single bucket under caller-chosen prefixes.
// Safe for concurrent use.
type ImageStore struct {
	client        S3Client
	bucket        string
	baseURL       string
	uploadTimeout time.Duration
}

// Option configures an ImageStore.
type Option func(*ImageStore)

// WithClient injects a pre-configured S3 client, mainly for tests.
func WithClient(client S3Client) Option {
	return func(s *ImageStore) { s.client = client }
}

// New creates an ImageStore from cfg, constructing an AWS SDK client
// unless one is injected.
func New(ctx context.Context, cfg Config, opts ...Option) (*ImageStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: Bucket is required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}

	store := &ImageStore{
		bucket:        cfg.Bucket,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		uploadTimeout: cfg.UploadTimeout,
	}
	if store.uploadTimeout <= 0 {
		store.uploadTimeout = 30 * time.Second
	}

	for _, opt := range opts {
		opt(store)
	}

	if store.client == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			),
		)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}

		store.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			o.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return store, nil
}

// Upload stores the image under prefix with a collision-free name derived
// from the original filename, returning its public URL.
func (s *ImageStore) Upload(ctx context.Context, body io.Reader, prefix, filename, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	key := path.Join(prefix, objectName(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", errors.Join(ErrUploadFailed, err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes an object previously uploaded by key.
func (s *ImageStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// objectName prefixes the sanitized original name with a UUID so repeated
// uploads of the same file never collide.
func objectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, " ", "_"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return uuid.NewString() + "_" + base
}
