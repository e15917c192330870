package remote

import (
	"context"
	"fmt"
	"path"
	"strings"
)

const (
	ProviderYandex = "yandex"
	ProviderS3     = "s3"
	ProviderMinio  = "minio"
)

// Config selects a backend and carries the settings for each of them.
type Config struct {
	Provider string
	Folder   string
	Yandex   YandexConfig
	S3       S3Config
	Minio    MinioConfig
}

type YandexConfig struct {
	Token   string `mapstructure:"token" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

type S3Config struct {
	Bucket       string `mapstructure:"bucket" validate:"required"`
	Region       string `mapstructure:"region" validate:"required"`
	AccessKey    string `mapstructure:"access_key" validate:"required"`
	SecretKey    string `mapstructure:"secret_key" validate:"required"`
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint" validate:"required,hostname_port"`
	Bucket    string `mapstructure:"bucket" validate:"required"`
	AccessKey string `mapstructure:"access_key" validate:"required"`
	SecretKey string `mapstructure:"secret_key" validate:"required"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// New creates the Storage for cfg.Provider.
func New(ctx context.Context, cfg *Config) (Storage, error) {
	switch cfg.Provider {
	case ProviderYandex:
		return NewYandexStorage(&cfg.Yandex, cfg.Folder), nil
	case ProviderS3:
		return NewS3Storage(ctx, &cfg.S3, cfg.Folder)
	case ProviderMinio:
		return NewMinioStorage(&cfg.Minio, cfg.Folder)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// objectKey maps a local file name into the remote folder.
func objectKey(folder, name string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// folderPrefix is the listing prefix for a folder, with a trailing slash.
func folderPrefix(folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return ""
	}
	return folder + "/"
}

// relativeName is the inverse of objectKey: the key with the folder prefix
// removed, so nested objects keep their sub-path.
func relativeName(folder, key string) string {
	return strings.TrimPrefix(key, folderPrefix(folder))
}
