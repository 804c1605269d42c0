package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/trouvetonartisan/backend/config"
)

// ImagePrefix is the folder of artisan images inside the bucket.
const ImagePrefix = "uploads"

const presignExpiry = 15 * time.Minute

type S3Storage struct {
	presign *s3.PresignClient
	bucket  string
	baseURL string
}

func NewS3Storage(ctx context.Context, cfg config.StorageConfig) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.S3Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			awsCfg = aws.Config{Region: cfg.S3Region}
		}
	}

	return &S3Storage{
		presign: s3.NewPresignClient(s3.NewFromConfig(awsCfg)),
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (s *S3Storage) objectKey(key string) string {
	return ImagePrefix + "/" + key
}

// ImageURL returns where the client should fetch key from: the public base
// URL when one is configured, a presigned GET URL otherwise.
func (s *S3Storage) ImageURL(ctx context.Context, key string) (string, error) {
	key, err := ImageKey(key)
	if err != nil {
		return "", err
	}

	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, s.objectKey(key)), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}
