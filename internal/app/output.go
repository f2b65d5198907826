package app

import (
	"path/filepath"
	"strings"

	"myansub/internal/subtitle"
)

const fallbackName = "translated"

var unsafeNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// OutputName is the video name up to its first dot plus the format extension,
// or "translated" when nothing usable is left.
func OutputName(videoName string, format subtitle.Format) string {
	base := filepath.Base(videoName)
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}

	stem, _, _ := strings.Cut(base, ".")
	stem = strings.TrimSpace(unsafeNameChars.Replace(stem))
	if stem == "" {
		stem = fallbackName
	}

	return stem + format.Extension()
}
