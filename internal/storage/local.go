package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"myansub/internal/media"
)

var (
	_ Sink   = (*LocalStorage)(nil)
	_ Source = (*LocalStorage)(nil)
)

type LocalStorage struct {
	outputDir string
}

func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

func (s *LocalStorage) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(s.outputDir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}

	return path, nil
}

func (s *LocalStorage) Fetch(_ context.Context, ref string) (string, error) {
	info, err := os.Stat(ref)
	if err != nil {
		return "", fmt.Errorf("failed to open video: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", ref)
	}
	return ref, nil
}

// ListVideos returns the video files directly inside dir, sorted by name.
func ListVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read video directory: %w", err)
	}

	var videos []string
	for _, entry := range entries {
		if entry.IsDir() || !media.IsVideoFile(entry.Name()) {
			continue
		}
		videos = append(videos, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(videos)

	return videos, nil
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
