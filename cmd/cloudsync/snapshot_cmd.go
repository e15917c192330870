package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ermachok/yandex-drive-sych/internal/mirror"
)

func newSnapshotCmd(v *viper.Viper) *cobra.Command {
	var fsys afero.Fs = afero.NewOsFs()

	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the files that would be mirrored",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := localDir(v)
			if err != nil {
				return err
			}

			scanner := mirror.NewScanner(fsys, mirror.NewIgnoreList(mirror.IgnorePatterns(v.GetBool("ignore_junk"), v.GetStringSlice("ignore"))...))
			snap, err := scanner.Scan(dir)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			paths := snap.Paths().ToSlice()
			sort.Strings(paths)

			out := cmd.OutOrStdout()
			var total uint64
			for _, path := range paths {
				size := "?"
				if info, err := scanner.FileInfo(path); err == nil {
					size = humanize.IBytes(uint64(info.Size()))
					total += uint64(info.Size())
				}
				fmt.Fprintf(out, "%-40s %10s  %s\n", filepath.Base(path), size, snap[path].Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(out, "%d files, %s in %s\n", len(paths), humanize.IBytes(total), dir)
			return nil
		},
	}
}
