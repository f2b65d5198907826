package media

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
)

func TestEncodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	tests := []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "oneByte", size: 1},
		{name: "notMultipleOfThree", size: 1001},
		{name: "oneMebibyte", size: 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := make([]byte, tt.size)
			rng.Read(original)

			video, err := Encode(bytes.NewReader(original), "video/webm")
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if video.MIMEType != "video/webm" {
				t.Errorf("MIMEType = %q, want video/webm", video.MIMEType)
			}
			if video.Size != int64(tt.size) {
				t.Errorf("Size = %d, want %d", video.Size, tt.size)
			}

			decoded, err := video.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if !bytes.Equal(decoded, original) {
				t.Error("decoded bytes differ from original")
			}

			fromText, err := Video{Data: video.Data}.Bytes()
			if err != nil {
				t.Fatalf("Bytes() of encoded text error = %v", err)
			}
			if !bytes.Equal(fromText, original) {
				t.Error("bytes decoded from Data differ from original")
			}
		})
	}
}

func TestEncodeKeepsRawBytes(t *testing.T) {
	video, err := Encode(strings.NewReader("abc"), "video/mp4")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	video.Data = "not base64!"
	data, err := video.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v, want raw bytes without decoding", err)
	}
	if string(data) != "abc" {
		t.Errorf("Bytes() = %q, want abc", data)
	}
}

func TestEncodeDefaultMIMEType(t *testing.T) {
	video, err := Encode(strings.NewReader("abc"), "")
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if video.MIMEType != DefaultMIMEType {
		t.Errorf("MIMEType = %q, want %q", video.MIMEType, DefaultMIMEType)
	}
	if video.Data != "YWJj" {
		t.Errorf("Data = %q, want YWJj", video.Data)
	}
}

func TestEncodeReadError(t *testing.T) {
	readErr := errors.New("disk gone")
	_, err := Encode(iotest.ErrReader(readErr), "video/mp4")
	if !errors.Is(err, readErr) {
		t.Errorf("Encode() error = %v, want wrapped %v", err, readErr)
	}
}

func TestCheckSize(t *testing.T) {
	tests := []struct {
		name    string
		size    int64
		limit   int64
		wantErr bool
	}{
		{name: "underLimit", size: 10, limit: DefaultMaxSize},
		{name: "atLimit", size: DefaultMaxSize, limit: DefaultMaxSize},
		{name: "overLimit", size: DefaultMaxSize + 1, limit: DefaultMaxSize, wantErr: true},
		{name: "noLimit", size: DefaultMaxSize * 4, limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSize(tt.size, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckSize() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrTooLarge) {
				t.Errorf("CheckSize() error = %v, want ErrTooLarge", err)
			}
		})
	}
}

func TestEncodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	content := []byte("not really a video but good enough")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	video, err := EncodeFile(path, DefaultMaxSize)
	if err != nil {
		t.Fatalf("EncodeFile() error = %v", err)
	}
	if video.Name != "clip.mp4" {
		t.Errorf("Name = %q, want clip.mp4", video.Name)
	}
	if video.MIMEType != "video/mp4" {
		t.Errorf("MIMEType = %q, want video/mp4", video.MIMEType)
	}
	decoded, _ := video.Bytes()
	if !bytes.Equal(decoded, content) {
		t.Error("decoded bytes differ from file content")
	}

	if _, err := EncodeFile(path, 4); !errors.Is(err, ErrTooLarge) {
		t.Errorf("EncodeFile() with small limit error = %v, want ErrTooLarge", err)
	}
	if _, err := EncodeFile(filepath.Join(dir, "missing.mp4"), DefaultMaxSize); err == nil {
		t.Error("EncodeFile() on missing file should fail")
	}
}

func TestDetectMIMEType(t *testing.T) {
	webm := []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00, 0x00}

	tests := []struct {
		name string
		file string
		head []byte
		want string
	}{
		{name: "mp4Extension", file: "a.mp4", want: "video/mp4"},
		{name: "upperCaseExtension", file: "A.WEBM", want: "video/webm"},
		{name: "sniffedWebm", file: "noext", head: webm, want: "video/webm"},
		{name: "textFallsBack", file: "notes.txt", head: []byte("hello"), want: DefaultMIMEType},
		{name: "nothingKnown", file: "", want: DefaultMIMEType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectMIMEType(tt.file, tt.head); got != tt.want {
				t.Errorf("DetectMIMEType(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestIsVideoFile(t *testing.T) {
	tests := map[string]bool{
		"clip.mp4":       true,
		"CLIP.MOV":       true,
		"dir/x.mkv":      true,
		"subs.srt":       false,
		"no-extension":   false,
		"archive.mp4.gz": false,
	}

	for name, want := range tests {
		if got := IsVideoFile(name); got != want {
			t.Errorf("IsVideoFile(%q) = %v, want %v", name, got, want)
		}
	}
}
