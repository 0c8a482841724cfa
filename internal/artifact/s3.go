package artifact

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/clementg/consoleback/internal/config"
)

// S3Mirror copies stored artifacts to an S3 bucket under the same
// date-partitioned keys.
type S3Mirror struct {
	uploader *manager.Uploader
	bucket   string
	logger   zerolog.Logger
}

// NewS3Mirror builds a mirror from config. A custom endpoint with path-style
// addressing is supported for MinIO/Ceph-style deployments.
func NewS3Mirror(cfg *config.Config, logger zerolog.Logger) *S3Mirror {
	opts := s3.Options{
		Region:      cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
	}
	if cfg.S3Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3Endpoint)
		opts.UsePathStyle = true
	}
	client := s3.New(opts)

	return &S3Mirror{
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		logger:   logger.With().Str("component", "s3-mirror").Logger(),
	}
}

func (m *S3Mirror) Upload(ctx context.Context, key string, data []byte) error {
	_, err := m.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", m.bucket, key, err)
	}
	m.logger.Debug().Str("key", key).Msg("artifact mirrored")
	return nil
}
