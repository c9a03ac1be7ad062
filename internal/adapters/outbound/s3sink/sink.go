// Package s3sink uploads artifacts to an S3-compatible bucket.
package s3sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/medqc/stacaudit/internal/domain"
)

// Uploader is the part of manager.Uploader the sink needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Sink implements domain.ArtifactSink on top of S3.
type Sink struct {
	uploader Uploader
	bucket   string
	prefix   string
}

// Credentials are optional static keys; the default AWS chain is used when empty.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// New builds a sink from the client configuration.
func New(ctx context.Context, cfg domain.S3Config, creds Credentials) (*Sink, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if creds.AccessKey != "" && creds.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return NewWithUploader(manager.NewUploader(client), cfg.Bucket, cfg.Prefix), nil
}

// NewWithUploader creates a sink around an existing uploader.
func NewWithUploader(u Uploader, bucket, prefix string) *Sink {
	return &Sink{uploader: u, bucket: bucket, prefix: prefix}
}

// Key returns the object key for a filename.
func (s *Sink) Key(filename string) string {
	if s.prefix == "" {
		return filename
	}
	return path.Join(s.prefix, filename)
}

// Save uploads the artifact and returns its location.
func (s *Sink) Save(ctx context.Context, artifact domain.Artifact) (string, error) {
	key := s.Key(artifact.Filename)
	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(artifact.Content),
		ContentType: aws.String(artifact.MediaType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	if result.Location != "" {
		return result.Location, nil
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
