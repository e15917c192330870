package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of *s3.Client used here.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3Storage mirrors into a key prefix of an S3 (or S3 compatible) bucket.
// Success statuses are reported as 201 for writes and 204 for deletes so the
// controller can treat every backend the same way.
type S3Storage struct {
	client s3API
	bucket string
	folder string
}

func NewS3Storage(ctx context.Context, cfg *S3Config, folder string) (*S3Storage, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	return newS3StorageWithClient(client, cfg.Bucket, folder), nil
}

func newS3StorageWithClient(client s3API, bucket, folder string) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: bucket,
		folder: folder,
	}
}

func (s *S3Storage) Name() string {
	return "S3"
}

func (s *S3Storage) Upload(ctx context.Context, localPath string) (*Result, error) {
	file, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, localPath)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	key := objectKey(s.folder, filepath.Base(localPath))
	resp, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
	})
	if err != nil {
		return s3ErrorResult(err)
	}

	return jsonResult(http.StatusCreated, map[string]any{
		"key":     key,
		"etag":    strings.ReplaceAll(aws.ToString(resp.ETag), "\"", ""),
		"version": aws.ToString(resp.VersionId),
		"size":    info.Size(),
	}), nil
}

func (s *S3Storage) Update(ctx context.Context, localPath string) (*Result, error) {
	return s.Upload(ctx, localPath)
}

func (s *S3Storage) Delete(ctx context.Context, name string) (*Result, error) {
	key := objectKey(s.folder, name)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return s3ErrorResult(err)
	}
	return &Result{StatusCode: http.StatusNoContent}, nil
}

func (s *S3Storage) List(ctx context.Context) ([]*Entry, error) {
	prefix := folderPrefix(s.folder)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: &s.bucket,
		Prefix: aws.String(prefix),
	})

	entries := make([]*Entry, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			entries = append(entries, &Entry{
				Name: relativeName(s.folder, key),
				Path: key,
				Type: "file",
			})
		}
	}

	return entries, nil
}

// s3ErrorResult turns an HTTP response error into a Result so it is
// classified like any other status. Other errors are returned as is.
func s3ErrorResult(err error) (*Result, error) {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return jsonResult(respErr.HTTPStatusCode(), map[string]string{
			"error":     respErr.Error(),
			"requestId": respErr.ServiceRequestID(),
		}), nil
	}
	return nil, err
}

var _ Storage = (*S3Storage)(nil)
