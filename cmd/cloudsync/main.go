package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Ermachok/yandex-drive-sych/internal/config"
	"github.com/Ermachok/yandex-drive-sych/internal/controlplane"
	"github.com/Ermachok/yandex-drive-sych/internal/logging"
	"github.com/Ermachok/yandex-drive-sych/internal/mirror"
	"github.com/Ermachok/yandex-drive-sych/internal/remote"
	"github.com/Ermachok/yandex-drive-sych/internal/version"
)

const (
	configFileName  = "config"
	shutdownTimeout = 5 * time.Second
)

func main() {
	// a missing .env is fine, everything can come from flags or the config file
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	config.SetDefaults(v)

	rootCmd := &cobra.Command{
		Use:     "cloudsync",
		Short:   "Mirror a local directory to a cloud folder",
		Version: version.Detailed(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true
			return runDaemon(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default ~/.cloudsync/config.{yaml,json,toml})")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Local directory to mirror")
	rootCmd.PersistentFlags().StringP("remote-folder", "r", "", "Remote folder to mirror into")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "Remote provider: yandex, s3 or minio")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("ignore-junk", false, "Skip OS and editor temp files (.DS_Store, *.swp, *.tmp, ...)")
	rootCmd.Flags().DurationP("interval", "i", 0, "Polling interval")
	rootCmd.Flags().Duration("call-timeout", 0, "Timeout for a single remote call, 0 disables it")
	rootCmd.Flags().String("log-file", "", "Log file")
	rootCmd.Flags().BoolP("watch", "w", false, "Use file system events to poll early")
	rootCmd.Flags().Bool("http", false, "Enable the local control plane")
	rootCmd.Flags().StringP("http-addr", "a", "", "Address to bind the control plane")
	rootCmd.Flags().StringP("http-token", "t", "", "Access token for the control plane")

	rootCmd.AddCommand(newSnapshotCmd(v))
	rootCmd.AddCommand(newRemoteCmd(v))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

var flagKeys = map[string]string{
	"dir":           "local_dir",
	"remote-folder": "remote_folder",
	"provider":      "provider",
	"log-level":     "log_level",
	"ignore-junk":   "ignore_junk",
	"interval":      "interval",
	"call-timeout":  "call_timeout",
	"log-file":      "log_file",
	"watch":         "watch",
	"http":          "control_plane.enabled",
	"http-addr":     "control_plane.addr",
	"http-token":    "control_plane.token",
}

func loadConfig(cmd *cobra.Command, v *viper.Viper) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(config.DefaultConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName(configFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", v.ConfigFileUsed(), err)
		}
	}

	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}

	return nil
}

func runDaemon(ctx context.Context, cfg *config.Config) error {
	logCloser, err := logging.Setup(logging.Options{Level: cfg.LogLevel, LogFile: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()

	slog.Info("cloudsync", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)
	slog.Info("cloudsync config", "path", cfg.Path, "dir", cfg.LocalDir, "provider", cfg.Provider, "folder", cfg.RemoteFolder, "interval", cfg.Interval)

	storage, err := remote.New(ctx, cfg.RemoteConfig())
	if err != nil {
		return err
	}

	mgr, err := mirror.NewManager(&mirror.ManagerConfig{
		LocalDir:    cfg.LocalDir,
		Interval:    cfg.Interval,
		CallTimeout: cfg.CallTimeout,
		LockFile:    cfg.LockFile,
		Watch:       cfg.Watch,
		Ignore:      cfg.Ignore,
		IgnoreJunk:  cfg.IgnoreJunk,
	}, storage)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return mgr.Run(egCtx)
	})

	if cfg.ControlPlane.Enabled {
		srv := controlplane.NewServer(&controlplane.Config{
			Addr:  cfg.ControlPlane.Addr,
			Token: cfg.ControlPlane.Token,
		}, mgr)

		eg.Go(srv.Start)
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		})
	}

	defer slog.Info("Bye!")
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("cloudsync", "error", err)
		return err
	}
	return nil
}

// localDir resolves the directory for commands that do not need a full config.
func localDir(v *viper.Viper) (string, error) {
	dir := v.GetString("local_dir")
	if dir == "" {
		return "", fmt.Errorf("%w: local_dir is required", config.ErrInvalidConfig)
	}
	return filepath.Abs(dir)
}
