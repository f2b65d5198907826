package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultMaxSize  int64 = 50 << 20
	DefaultMIMEType       = "video/mp4"

	sniffLen = 512
)

var ErrTooLarge = errors.New("video exceeds size limit")

var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
}

// Video is a base64-encoded payload ready to be embedded in a request.
// Videos built by Encode also keep the raw bytes, so Bytes does not decode.
type Video struct {
	Name     string
	Data     string
	MIMEType string
	Size     int64

	raw []byte
}

func (v Video) Bytes() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	data, err := base64.StdEncoding.DecodeString(v.Data)
	if err != nil {
		return nil, fmt.Errorf("decode video: %w", err)
	}
	return data, nil
}

func CheckSize(size, limit int64) error {
	if limit > 0 && size > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, limit)
	}
	return nil
}

// Encode assumes the caller already ran CheckSize.
func Encode(r io.Reader, mimeType string) (Video, error) {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	var raw, buf bytes.Buffer
	enc := base64.NewEncoder(base64.StdEncoding, &buf)

	n, err := io.Copy(io.MultiWriter(&raw, enc), r)
	if err != nil {
		return Video{}, fmt.Errorf("read video: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Video{}, fmt.Errorf("encode video: %w", err)
	}

	return Video{
		Data:     buf.String(),
		MIMEType: mimeType,
		Size:     n,
		raw:      raw.Bytes(),
	}, nil
}

func EncodeFile(path string, limit int64) (Video, error) {
	f, err := os.Open(path)
	if err != nil {
		return Video{}, fmt.Errorf("open video: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return Video{}, fmt.Errorf("stat video: %w", err)
	}
	if err := CheckSize(info.Size(), limit); err != nil {
		return Video{}, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Video{}, fmt.Errorf("read video: %w", err)
	}
	head = head[:n]

	video, err := Encode(io.MultiReader(bytes.NewReader(head), f), DetectMIMEType(path, head))
	if err != nil {
		return Video{}, err
	}
	video.Name = filepath.Base(path)
	return video, nil
}

// DetectMIMEType prefers the extension, then content sniffing, and only keeps video types.
func DetectMIMEType(name string, head []byte) string {
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		if t, ok := videoTypes[ext]; ok {
			return t
		}
		if t := baseType(mime.TypeByExtension(ext)); strings.HasPrefix(t, "video/") {
			return t
		}
	}
	if len(head) > 0 {
		if t := baseType(http.DetectContentType(head)); strings.HasPrefix(t, "video/") {
			return t
		}
	}
	return DefaultMIMEType
}

func baseType(t string) string {
	mediaType, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mediaType
}

// IsVideoFile reports whether name has a known video extension.
func IsVideoFile(name string) bool {
	_, ok := videoTypes[strings.ToLower(filepath.Ext(name))]
	return ok
}
