// Package storage uploads generated report files to an S3-compatible
// bucket (R2, MinIO, AWS). Archiving is best-effort: the shop keeps its
// reports even when no bucket is configured.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Archiver struct {
	endpoint  string
	region    string
	bucket    string
	accessKey string
	secretKey string
}

// NewArchiverFromEnv reads ARCHIVE_* settings. Returns nil when no bucket
// is configured, which callers treat as "archiving disabled".
func NewArchiverFromEnv() *Archiver {
	bucket := os.Getenv("ARCHIVE_BUCKET")
	if bucket == "" {
		return nil
	}
	region := os.Getenv("ARCHIVE_REGION")
	if region == "" {
		region = "auto"
	}
	return &Archiver{
		endpoint:  os.Getenv("ARCHIVE_ENDPOINT"),
		region:    region,
		bucket:    bucket,
		accessKey: os.Getenv("ARCHIVE_ACCESS_KEY"),
		secretKey: os.Getenv("ARCHIVE_SECRET_KEY"),
	}
}

// Upload stores one file under reports/<date>/<name>
func (a *Archiver) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.accessKey,
			a.secretKey,
			"",
		)),
		awsconfig.WithRegion(a.region),
	)
	if err != nil {
		return "", fmt.Errorf("failed to configure archive client: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if a.endpoint != "" {
			o.BaseEndpoint = aws.String(a.endpoint)
		}
	})

	key := fmt.Sprintf("reports/%s/%s", time.Now().Format("2006-01-02"), name)
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
