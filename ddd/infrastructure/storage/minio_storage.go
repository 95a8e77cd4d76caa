package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"

	"video-pipeline-service/ddd/domain/gateway"
	"video-pipeline-service/pkg/logger"
)

type minioSourceStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioSourceStorage builds the object-storage gateway used to fetch
// uploads that arrive via the bucket instead of direct HTTP.
func NewMinioSourceStorage(client *minio.Client, bucket string) gateway.SourceStorageGateway {
	return &minioSourceStorage{client: client, bucket: bucket}
}

func (s *minioSourceStorage) DownloadFile(ctx context.Context, objectKey, localPath string) error {
	if err := s.client.FGetObject(ctx, s.bucket, objectKey, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s/%s: %w", s.bucket, objectKey, err)
	}
	logger.Debug("Source object downloaded", map[string]interface{}{
		"bucket":     s.bucket,
		"object_key": objectKey,
		"local_path": localPath,
	})
	return nil
}

func (s *minioSourceStorage) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat %s/%s: %w", s.bucket, objectKey, err)
	}
	return true, nil
}

func (s *minioSourceStorage) RemoveFile(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s/%s: %w", s.bucket, objectKey, err)
	}
	return nil
}
