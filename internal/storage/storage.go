package storage

import (
	"context"
	"fmt"
	"strings"
)

const gcsScheme = "gs://"

// Sink persists a rendered subtitle document and returns where it was written.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Source resolves a video reference to a readable local path.
type Source interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

func IsGCSURI(ref string) bool {
	return strings.HasPrefix(ref, gcsScheme)
}

func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !IsGCSURI(uri) {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}

	bucket, object, _ = strings.Cut(strings.TrimPrefix(uri, gcsScheme), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("missing bucket in %q", uri)
	}
	return bucket, object, nil
}

func GCSURI(bucket, object string) string {
	return gcsScheme + bucket + "/" + object
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".srt"):
		return "application/x-subrip; charset=utf-8"
	case strings.HasSuffix(name, ".vtt"):
		return "text/vtt; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
