package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ermachok/yandex-drive-sych/internal/config"
	"github.com/Ermachok/yandex-drive-sych/internal/remote"
)

func newRemoteCmd(v *viper.Viper) *cobra.Command {
	remoteCmd := &cobra.Command{
		Use:   "remote",
		Short: "Inspect the remote folder",
	}

	remoteCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List the remote folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			storage, err := remote.New(cmd.Context(), cfg.RemoteConfig())
			if err != nil {
				return err
			}

			entries, err := storage.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s list: %w", storage.Name(), err)
			}

			out := cmd.OutOrStdout()
			for _, entry := range entries {
				fmt.Fprintf(out, "%-6s %-40s %s\n", entry.Type, entry.Name, entry.Path)
			}
			fmt.Fprintf(out, "%d entries in %s\n", len(entries), storage.Name())
			return nil
		},
	})

	return remoteCmd
}
