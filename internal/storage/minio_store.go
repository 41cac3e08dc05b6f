package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"farmdash/internal/config"
)

// IObjectStorage is the blob-storage contract the auth container uses for
// avatar images.
type IObjectStorage interface {
	Upload(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) error
	// PublicURL resolves the publicly addressable URL for an uploaded
	// object. Resolution is local; it does not confirm the object exists.
	PublicURL(objectName string) string
}

// MinioStore stores avatars in a public-read bucket on an S3-compatible
// endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

var _ IObjectStorage = (*MinioStore)(nil)

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	isSecure, err := strconv.ParseBool(cfg.Secure)
	if err != nil {
		log.Printf("Invalid value for storage secure flag: %v. Defaulting to false.", err)
		isSecure = false
	}

	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: isSecure,
	})
	if err != nil {
		log.Printf("error connecting to storage endpoint: %v", err)
		return nil, err
	}

	// The endpoint may still be coming up when the client starts, so the
	// bucket handshake retries briefly. Request-path operations are never
	// retried.
	ensure := func() error {
		return ensureBucket(minioClient, cfg.Bucket, cfg.Location)
	}
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(ensure, bo); err != nil {
		return nil, fmt.Errorf("failed to prepare avatar bucket: %w", err)
	}

	if err := setPublicBucketPolicy(minioClient, cfg.Bucket); err != nil {
		log.Printf("Failed to set public policy for avatar bucket: %v", err)
		return nil, err
	}

	return &MinioStore{
		client: minioClient,
		bucket: cfg.Bucket,
	}, nil
}

func ensureBucket(client *minio.Client, bucketName, location string) error {
	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		log.Printf("error checking bucket existence: %v", err)
		return err
	}
	if !exists {
		err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			log.Printf("error creating bucket: %v", err)
			return err
		}
		log.Printf("Bucket created successfully %s", bucketName)
	}
	return nil
}

// Avatar URLs are embedded in profiles and read without credentials, so
// the bucket gets a public read-only policy.
func setPublicBucketPolicy(client *minio.Client, bucketName string) error {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Action":    []string{"s3:GetObject"},
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucketName)},
			},
		},
	}

	policyBytes, err := json.Marshal(policy)
	if err != nil {
		return fmt.Errorf("error marshalling policy: %w", err)
	}

	if err := client.SetBucketPolicy(context.Background(), bucketName, string(policyBytes)); err != nil {
		return fmt.Errorf("error setting bucket policy: %w", err)
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	return err
}

func (s *MinioStore) PublicURL(objectName string) string {
	endpoint := s.client.EndpointURL()
	return fmt.Sprintf("%s/%s/%s", endpoint.String(), s.bucket, objectName)
}
