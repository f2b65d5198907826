package subtitle

import (
	"fmt"
	"strings"
)

type Format string

const (
	SRT Format = "srt"
	VTT Format = "vtt"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case SRT, "":
		return SRT, nil
	case VTT:
		return VTT, nil
	}
	return "", fmt.Errorf("unsupported subtitle format %q", s)
}

func (f Format) Extension() string {
	return "." + string(f)
}

func (f Format) Render(entries []Entry) string {
	if f == VTT {
		return ToVTT(entries)
	}
	return ToSRT(entries)
}

// ToSRT renders entries in input order; an empty slice yields "".
func ToSRT(entries []Entry) string {
	var sb strings.Builder

	for i, entry := range entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n",
			entry.ID,
			NormalizeTimestamp(entry.StartTime),
			NormalizeTimestamp(entry.EndTime),
			entry.Text,
		)
	}

	return sb.String()
}

func ToVTT(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("WEBVTT\n")

	for _, entry := range entries {
		fmt.Fprintf(&sb, "\n%d\n%s --> %s\n%s\n",
			entry.ID,
			toVTTTime(entry.StartTime),
			toVTTTime(entry.EndTime),
			entry.Text,
		)
	}

	return sb.String()
}

func toVTTTime(ts string) string {
	return strings.ReplaceAll(NormalizeTimestamp(ts), ",", ".")
}
