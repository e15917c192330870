package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage mirrors into a prefix of a MinIO bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	folder string
}

func NewMinioStorage(cfg *MinioConfig, folder string) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &MinioStorage{
		client: client,
		bucket: cfg.Bucket,
		folder: folder,
	}, nil
}

func (m *MinioStorage) Name() string {
	return "MinIO"
}

func (m *MinioStorage) Upload(ctx context.Context, localPath string) (*Result, error) {
	if _, err := os.Stat(localPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, localPath)
	}

	key := objectKey(m.folder, filepath.Base(localPath))
	info, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return minioErrorResult(err)
	}

	return jsonResult(http.StatusCreated, map[string]any{
		"key":     info.Key,
		"etag":    info.ETag,
		"version": info.VersionID,
		"size":    info.Size,
	}), nil
}

func (m *MinioStorage) Update(ctx context.Context, localPath string) (*Result, error) {
	return m.Upload(ctx, localPath)
}

func (m *MinioStorage) Delete(ctx context.Context, name string) (*Result, error) {
	key := objectKey(m.folder, name)
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return minioErrorResult(err)
	}
	return &Result{StatusCode: http.StatusNoContent}, nil
}

func (m *MinioStorage) List(ctx context.Context) ([]*Entry, error) {
	entries := make([]*Entry, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    folderPrefix(m.folder),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio list: %w", obj.Err)
		}
		entries = append(entries, &Entry{
			Name: relativeName(m.folder, obj.Key),
			Path: obj.Key,
			Type: "file",
		})
	}
	return entries, nil
}

func minioErrorResult(err error) (*Result, error) {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return nil, err
	}
	return jsonResult(resp.StatusCode, map[string]string{
		"code":      resp.Code,
		"error":     resp.Message,
		"requestId": resp.RequestID,
	}), nil
}

var _ Storage = (*MinioStorage)(nil)
