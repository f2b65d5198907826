package subtitle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type wireEntry struct {
	ID        *int    `json:"id"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Text      *string `json:"text"`
}

func (w wireEntry) missingField() string {
	switch {
	case w.ID == nil:
		return "id"
	case w.StartTime == nil:
		return "startTime"
	case w.EndTime == nil:
		return "endTime"
	case w.Text == nil:
		return "text"
	}
	return ""
}

// Parse maps a JSON array of subtitle objects to entries, keeping source order.
// Blank input is an empty result, not an error.
func Parse(raw string) ([]Entry, error) {
	return ParseLimited(raw, 0)
}

// ParseLimited is Parse with an upper bound on the number of entries; 0 disables the bound.
func ParseLimited(raw string, maxEntries int) ([]Entry, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []Entry{}, nil
	}
	if trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformed)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.DisallowUnknownFields()

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	entries := []Entry{}
	for dec.More() {
		if maxEntries > 0 && len(entries) >= maxEntries {
			return nil, fmt.Errorf("%w: more than %d entries", ErrMalformed, maxEntries)
		}

		var w wireEntry
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, len(entries), err)
		}
		if field := w.missingField(); field != "" {
			return nil, fmt.Errorf("%w: entry %d: missing %q", ErrMalformed, len(entries), field)
		}

		entries = append(entries, Entry{
			ID:        *w.ID,
			StartTime: *w.StartTime,
			EndTime:   *w.EndTime,
			Text:      *w.Text,
		})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformed)
	}

	return entries, nil
}
