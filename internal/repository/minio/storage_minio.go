package minio

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
)

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// Storage puts objects into MinIO buckets. Upload returns the public URL
// when a base is configured and the object key otherwise.
type Storage struct {
	client     *minio.Client
	publicBase string
}

var _ ports.ObjectStorage = (*Storage)(nil)

func NewStorage(client *minio.Client, publicBase string) *Storage {
	return &Storage{client: client, publicBase: strings.TrimRight(publicBase, "/")}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *Storage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return s.ObjectURL(bucket, objectName), nil
}

func (s *Storage) Remove(ctx context.Context, bucket, objectName string) error {
	return s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}

func (s *Storage) ObjectURL(bucket, objectName string) string {
	if s.publicBase == "" {
		return objectName
	}
	return s.publicBase + "/" + bucket + "/" + strings.TrimLeft(objectName, "/")
}
