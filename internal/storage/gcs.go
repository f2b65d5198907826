package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"myansub/internal/media"
)

var (
	_ Sink   = (*GCSStorage)(nil)
	_ Source = (*GCSStorage)(nil)
)

type GCSOptions struct {
	Bucket          string
	OutputPrefix    string
	CacheDir        string
	CredentialsFile string
	// MaxObjectSize rejects larger videos before they are downloaded. Zero disables the check.
	MaxObjectSize int64
}

type GCSStorage struct {
	client        *storage.Client
	bucket        string
	outputPrefix  string
	localCacheDir string
	maxSize       int64
}

func NewGCSStorage(ctx context.Context, opts GCSOptions) (*GCSStorage, error) {
	clientOpts, err := clientOptions(ctx, opts.CredentialsFile)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client:        client,
		bucket:        opts.Bucket,
		outputPrefix:  opts.OutputPrefix,
		localCacheDir: opts.CacheDir,
		maxSize:       opts.MaxObjectSize,
	}, nil
}

// clientOptions uses an explicit service account file when given. Otherwise the
// client falls back to application default credentials.
func clientOptions(ctx context.Context, credentialsFile string) ([]option.ClientOption, error) {
	if credentialsFile == "" || os.Getenv("STORAGE_EMULATOR_HOST") != "" {
		return nil, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, storage.ScopeReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// Save writes the document under the output prefix and returns its gs:// uri.
func (s *GCSStorage) Save(ctx context.Context, name string, data []byte) (string, error) {
	if s.bucket == "" {
		return "", errors.New("no GCS bucket configured")
	}

	object := path.Join(s.outputPrefix, filepath.Base(name))

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType(object)
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", object, err)
	}

	uri := GCSURI(s.bucket, object)
	slog.Info("Uploaded subtitles", "uri", uri)

	return uri, nil
}

// Fetch downloads a gs:// object into the cache directory, reusing a cached copy.
func (s *GCSStorage) Fetch(ctx context.Context, ref string) (string, error) {
	bucket, object, err := ParseGCSURI(ref)
	if err != nil {
		return "", err
	}
	if object == "" {
		return "", fmt.Errorf("missing object in %q", ref)
	}

	localPath := s.cachePath(bucket, object)
	if _, err := os.Stat(localPath); err == nil {
		slog.Debug("Using cached video", "uri", ref, "path", localPath)
		return localPath, nil
	}

	attrs, err := s.client.Bucket(bucket).Object(object).Attrs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read object attributes: %w", err)
	}
	if err := media.CheckSize(attrs.Size, s.maxSize); err != nil {
		return "", fmt.Errorf("%s: %w", ref, err)
	}

	if err := s.downloadFile(ctx, bucket, object, localPath); err != nil {
		return "", fmt.Errorf("failed to download video: %w", err)
	}

	return localPath, nil
}

// cachePath mirrors the object path under the cache directory. Cleaning it as an
// absolute path keeps ".." segments inside the cache.
func (s *GCSStorage) cachePath(bucket, object string) string {
	rel := path.Clean("/" + bucket + "/" + object)
	return filepath.Join(s.localCacheDir, filepath.FromSlash(rel))
}

// ListVideos returns gs:// uris of video objects under prefix in the configured bucket.
func (s *GCSStorage) ListVideos(ctx context.Context, prefix string) ([]string, error) {
	if s.bucket == "" {
		return nil, errors.New("no GCS bucket configured")
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var videos []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		if media.IsVideoFile(attrs.Name) {
			videos = append(videos, GCSURI(s.bucket, attrs.Name))
		}
	}

	return videos, nil
}

func (s *GCSStorage) downloadFile(ctx context.Context, bucket, object, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	tmp := localPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to download file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close local file: %w", err)
	}

	return os.Rename(tmp, localPath)
}
