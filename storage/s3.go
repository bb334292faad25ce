package storage

import (
	"academia_go/config"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service wraps the S3 bucket holding exported attendance reports and
// archived activity logs.
type Service struct {
	awsConfig aws.Config
	bucket    string
}

// NewService creates a storage service. A missing AWS configuration is not
// fatal: uploads report an error when attempted and callers degrade to
// returning files inline only.
func NewService() *Service {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(),
		awscfg.WithRegion(config.AppConfig.AWSRegion))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &Service{
		awsConfig: cfg,
		bucket:    config.AppConfig.S3BucketName,
	}
}

// Configured reports whether the AWS side is usable.
func (s *Service) Configured() bool {
	return s.awsConfig.Region != "" && s.bucket != ""
}

// Upload stores a byte payload under key.
func (s *Service) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if !s.Configured() {
		return fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(s.awsConfig)
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// Download retrieves an object's body.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("AWS not configured")
	}

	client := s3.NewFromConfig(s.awsConfig)
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}

// ReportKey builds the object key for an exported attendance report.
func ReportKey(sessionID uint, now time.Time) string {
	return fmt.Sprintf("reportes/asistencia/%d/%02d/sesion_%d_%s.xlsx",
		now.Year(), now.Month(), sessionID, uuid.New().String()[:8])
}

// LogArchiveKey builds the object key for an activity-log archive.
func LogArchiveKey(cutoff time.Time, fileName string) string {
	return fmt.Sprintf("logs/archivados/%d/%02d/%s", cutoff.Year(), cutoff.Month(), fileName)
}
