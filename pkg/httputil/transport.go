package httputil

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const DefaultMaxResponseBytes int64 = 8 << 20

var ErrResponseTooLarge = errors.New("response body exceeds limit")

// Transport logs each round trip and refuses response bodies above MaxResponseBytes.
// It never retries; a failed request is returned to the caller as is.
type Transport struct {
	Base             http.RoundTripper
	MaxResponseBytes int64
}

func NewClient(maxResponseBytes int64, timeout time.Duration) *http.Client {
	if maxResponseBytes <= 0 {
		maxResponseBytes = DefaultMaxResponseBytes
	}

	return &http.Client{
		Transport: &Transport{MaxResponseBytes: maxResponseBytes},
		Timeout:   timeout,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		slog.Debug("HTTP request failed",
			"method", req.Method,
			"host", req.URL.Host,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, err
	}

	slog.Debug("HTTP request",
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if t.MaxResponseBytes > 0 {
		if resp.ContentLength > t.MaxResponseBytes {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%w: %d bytes declared, limit %d", ErrResponseTooLarge, resp.ContentLength, t.MaxResponseBytes)
		}
		resp.Body = &limitedBody{rc: resp.Body, remaining: t.MaxResponseBytes}
	}

	return resp, nil
}

type limitedBody struct {
	rc        io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining < 0 {
		return 0, ErrResponseTooLarge
	}

	// Allow one byte past the limit so an exact-size body still reaches EOF.
	if int64(len(p)) > b.remaining+1 {
		p = p[:b.remaining+1]
	}

	n, err := b.rc.Read(p)
	b.remaining -= int64(n)
	if b.remaining < 0 {
		return n + int(b.remaining), ErrResponseTooLarge
	}
	return n, err
}

func (b *limitedBody) Close() error {
	return b.rc.Close()
}
