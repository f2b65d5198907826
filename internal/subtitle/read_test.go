package subtitle

import (
	"errors"
	"strings"
	"testing"
)

func TestReadSRT(t *testing.T) {
	doc := "\ufeff1\r\n00:00:00,000 --> 00:00:01,000\r\nA\r\n\r\n2\n00:00:01.000 --> 00:00:02,000\nB line one\nB line two\n\n\n"

	got, err := ReadSRT(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadSRT() error = %v", err)
	}

	want := []Entry{
		{ID: 1, StartTime: "00:00:00,000", EndTime: "00:00:01,000", Text: "A"},
		{ID: 2, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "B line one\nB line two"},
	}
	if len(got) != len(want) {
		t.Fatalf("ReadSRT() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadSRTRoundTrip(t *testing.T) {
	entries := []Entry{
		{ID: 1, StartTime: "00:00:00,000", EndTime: "00:00:01,000", Text: "A"},
		{ID: 2, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "B"},
	}

	got, err := ReadSRT(strings.NewReader(ToSRT(entries)))
	if err != nil {
		t.Fatalf("ReadSRT() error = %v", err)
	}
	if ToSRT(got) != ToSRT(entries) {
		t.Errorf("round trip mismatch: %q", ToSRT(got))
	}
}

func TestReadSRTMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "badSequence", doc: "one\n00:00:00,000 --> 00:00:01,000\nA\n"},
		{name: "missingArrow", doc: "1\n00:00:00,000 00:00:01,000\nA\n"},
		{name: "incompleteBlock", doc: "1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSRT(strings.NewReader(tt.doc))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("ReadSRT() error = %v, want ErrMalformed", err)
			}
		})
	}
}
