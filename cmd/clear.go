package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"myansub/pkg/config"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the download cache",
	Long:  `Remove videos downloaded from GCS into the cache directory.`,
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	count, err := clearDir(cfg.Video.CacheDir)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d cached file(s) from %s\n", count, cfg.Video.CacheDir)
	return nil
}

func clearDir(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("read cache: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return 0, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return count, nil
}
