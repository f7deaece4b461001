package objectstorage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// Uploader stores media objects and returns their public URL.
// Defined as an interface so services can be tested against a mock.
type Uploader interface {
	Upload(ctx context.Context, data, key, contentType string) (string, error)
	ValidateContentType(contentType string) error
	ValidateSize(data string) error
	GenerateKey(prefix, ownerID, originalFileName string) string
}

// StorageClient wraps an S3-compatible object storage bucket for course media
type StorageClient struct {
	s3Client   *s3.Client
	bucketName string
	endpoint   string
}

var _ Uploader = (*StorageClient)(nil)

// NewStorageClient creates a new S3-compatible object storage client
func NewStorageClient(accessKeyID, secretAccessKey, bucketName, endpoint, region string) (*StorageClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty storage endpoint provided")
	}
	if region == "" {
		region = "eu-west-1"
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token not needed
		),
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &StorageClient{
		s3Client:   s3Client,
		bucketName: bucketName,
		endpoint:   endpoint,
	}, nil
}

// Upload stores a base64-encoded object and returns its public URL.
// Accepts both raw base64 and data URIs (data:image/png;base64,...).
func (s *StorageClient) Upload(ctx context.Context, data, key, contentType string) (string, error) {
	start := time.Now()
	operation := "upload"

	raw, err := decodeBase64Payload(data)
	if err != nil {
		recordMetrics(operation, "error", start)
		return "", err
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(contentType),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", start)
		logger.LogAPICall("object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	recordMetrics(operation, "success", start)
	logger.LogAPICall("object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(raw)),
	)

	// Public URL format: {endpoint}/{bucket}/{key}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key), nil
}

// ValidateContentType validates the media content type
func (s *StorageClient) ValidateContentType(contentType string) error {
	validTypes := map[string]bool{
		"image/jpeg":      true,
		"image/jpg":       true,
		"image/png":       true,
		"image/webp":      true,
		"application/pdf": true,
		"application/epub+zip": true,
	}

	if !validTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpeg, jpg, png, webp, pdf, epub", contentType)
	}

	return nil
}

// ValidateSize validates the decoded payload size (max 10MB)
func (s *StorageClient) ValidateSize(data string) error {
	const maxSize = 10 * 1024 * 1024 // 10MB

	raw, err := decodeBase64Payload(data)
	if err != nil {
		return fmt.Errorf("failed to decode payload for size validation: %w", err)
	}

	if len(raw) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(raw), maxSize)
	}

	return nil
}

// GenerateKey builds a unique object key: {prefix}/{ownerID}/{uuid}{ext}
func (s *StorageClient) GenerateKey(prefix, ownerID, originalFileName string) string {
	ext := strings.ToLower(filepath.Ext(originalFileName))
	return fmt.Sprintf("%s/%s/%s%s", prefix, ownerID, uuid.NewString(), ext)
}

func recordMetrics(operation, status string, start time.Time) {
	duration := metrics.MeasureDuration(start)
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()
}

// decodeBase64Payload decodes a base64 string, handling the data URI form
func decodeBase64Payload(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data URI format")
		}
		data = parts[1]
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
	}

	return raw, nil
}
