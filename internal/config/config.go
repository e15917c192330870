package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ermachok/yandex-drive-sych/internal/remote"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var (
	home, _            = os.UserHomeDir()
	DefaultConfigDir   = filepath.Join(home, ".cloudsync")
	DefaultLogFile     = filepath.Join(DefaultConfigDir, "logs", "cloudsync.log")
	DefaultLockFile    = filepath.Join(DefaultConfigDir, "cloudsync.lock")
	DefaultAddr        = "127.0.0.1:7938"
	DefaultInterval    = 10 * time.Second
	DefaultCallTimeout = 60 * time.Second
)

const EnvPrefix = "CLOUDSYNC"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LocalDir     string        `mapstructure:"local_dir" validate:"required"`
	RemoteFolder string        `mapstructure:"remote_folder"`
	Provider     string        `mapstructure:"provider" validate:"required,oneof=yandex s3 minio"`
	Interval     time.Duration `mapstructure:"interval" validate:"gt=0"`
	CallTimeout  time.Duration `mapstructure:"call_timeout" validate:"gte=0"`
	LogFile      string        `mapstructure:"log_file"`
	LogLevel     string        `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LockFile     string        `mapstructure:"lock_file"`
	Watch        bool          `mapstructure:"watch"`
	Ignore       []string      `mapstructure:"ignore"`
	IgnoreJunk   bool          `mapstructure:"ignore_junk"`

	// only the section of the selected provider is validated
	Yandex remote.YandexConfig `mapstructure:"yandex" validate:"-"`
	S3     remote.S3Config     `mapstructure:"s3" validate:"-"`
	Minio  remote.MinioConfig  `mapstructure:"minio" validate:"-"`

	ControlPlane ControlPlaneConfig `mapstructure:"control_plane" validate:"-"`

	Path string `mapstructure:"-"`
}

type ControlPlaneConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required,hostname_port"`
	Token   string `mapstructure:"token"`
}

// legacyEnv maps keys to the variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"yandex.token":  "YANDEX_TOKEN",
	"local_dir":     "USER_DIRECTORY_ABSOLUTE_PATH",
	"remote_folder": "YANDEX_FOLDER",
	"log_file":      "LOGGER_FILE",
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", remote.ProviderYandex)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("call_timeout", DefaultCallTimeout)
	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("log_level", "info")
	v.SetDefault("lock_file", DefaultLockFile)
	v.SetDefault("yandex.base_url", remote.DefaultYandexBaseURL)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("control_plane.addr", DefaultAddr)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envKey, legacy)
	}

	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{
		"watch", "ignore", "ignore_junk",
		"yandex.token",
		"s3.bucket", "s3.access_key", "s3.secret_key", "s3.endpoint", "s3.use_path_style",
		"minio.endpoint", "minio.bucket", "minio.access_key", "minio.secret_key", "minio.use_ssl",
		"control_plane.enabled", "control_plane.token",
	} {
		if _, ok := legacyEnv[key]; ok {
			continue
		}
		_ = v.BindEnv(key)
	}
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config decode: %w", err)
	}
	cfg.Path = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	dir, err := resolvePath(c.LocalDir)
	if err != nil {
		return fmt.Errorf("%w: local_dir: %w", ErrInvalidConfig, err)
	}
	c.LocalDir = dir

	var section any
	switch c.Provider {
	case remote.ProviderYandex:
		section = &c.Yandex
	case remote.ProviderS3:
		section = &c.S3
	case remote.ProviderMinio:
		section = &c.Minio
	}
	if err := validate.Struct(section); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, c.Provider, err)
	}

	if c.ControlPlane.Enabled {
		if err := validate.Struct(&c.ControlPlane); err != nil {
			return fmt.Errorf("%w: control_plane: %w", ErrInvalidConfig, err)
		}
	}

	return nil
}

// RemoteConfig returns the settings remote.New needs.
func (c *Config) RemoteConfig() *remote.Config {
	return &remote.Config{
		Provider: c.Provider,
		Folder:   c.RemoteFolder,
		Yandex:   c.Yandex,
		S3:       c.S3,
		Minio:    c.Minio,
	}
}

func resolvePath(path string) (string, error) {
	if path == "~" {
		path = home
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}
