package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestTransportPassesSmallBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Base: server.Client().Transport, MaxResponseBytes: 7}}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(body) != "success" {
		t.Errorf("body = %q, want %q", body, "success")
	}
}

func TestTransportRejectsDeclaredLength(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Base: server.Client().Transport, MaxResponseBytes: 10}}

	_, err := client.Get(server.URL)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestTransportRejectsStreamedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for range 10 {
			_, _ = w.Write([]byte("0123456789"))
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Base: server.Client().Transport, MaxResponseBytes: 25}}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
	if len(body) != 25 {
		t.Errorf("read %d bytes before failing, want 25", len(body))
	}
}

func TestTransportDoesNotRetry(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := &http.Client{Transport: &Transport{Base: server.Client().Transport, MaxResponseBytes: 1024}}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected 1 attempt, got %d", got)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(0, 5*time.Second)

	tr, ok := client.Transport.(*Transport)
	if !ok {
		t.Fatalf("transport = %T, want *Transport", client.Transport)
	}
	if tr.MaxResponseBytes != DefaultMaxResponseBytes {
		t.Errorf("MaxResponseBytes = %d, want %d", tr.MaxResponseBytes, DefaultMaxResponseBytes)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", client.Timeout)
	}
}

func TestErrResponseTooLargeWording(t *testing.T) {
	if strings.Contains(strings.ToLower(ErrResponseTooLarge.Error()), "too large") {
		t.Error("error text must not read as an upstream payload rejection")
	}
}
