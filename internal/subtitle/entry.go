package subtitle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMalformed = errors.New("malformed subtitle data")

type Entry struct {
	ID        int    `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Text      string `json:"text"`
}

// ParseTimestamp accepts HH:MM:SS,mmm and the HH:MM:SS.mmm variant.
func ParseTimestamp(s string) (time.Duration, error) {
	normalized := NormalizeTimestamp(strings.TrimSpace(s))

	clock, millis, ok := strings.Cut(normalized, ",")
	if !ok || len(millis) != 3 {
		return 0, fmt.Errorf("%w: timestamp %q", ErrMalformed, s)
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: timestamp %q", ErrMalformed, s)
	}

	values := make([]int, 0, 4)
	for _, field := range append(parts, millis) {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || field == "" {
			return 0, fmt.Errorf("%w: timestamp %q", ErrMalformed, s)
		}
		values = append(values, n)
	}
	h, m, sec, ms := values[0], values[1], values[2], values[3]
	if m > 59 || sec > 59 {
		return 0, fmt.Errorf("%w: timestamp %q", ErrMalformed, s)
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := d.Milliseconds()
	hours := total / 3_600_000
	minutes := (total % 3_600_000) / 60_000
	secs := (total % 60_000) / 1000
	millis := total % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// NormalizeTimestamp replaces decimal points with the comma SRT requires before milliseconds.
func NormalizeTimestamp(s string) string {
	return strings.ReplaceAll(s, ".", ",")
}
