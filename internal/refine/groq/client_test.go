package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"myansub/internal/subtitle"
)

func entries(n int) []subtitle.Entry {
	out := make([]subtitle.Entry, n)
	for i := range out {
		out[i] = subtitle.Entry{
			ID:        i + 1,
			StartTime: fmt.Sprintf("00:00:%02d,000", i),
			EndTime:   fmt.Sprintf("00:00:%02d,500", i),
			Text:      fmt.Sprintf("line %d", i+1),
		}
	}
	return out
}

// echoRewrites answers every prompt by upper-casing the requested lines.
func echoRewrites(calls *int) completeFunc {
	return func(_ context.Context, _, userPrompt string) (string, error) {
		*calls++
		_, list, _ := strings.Cut(userPrompt, "Subtitles:")
		var lines []line
		if err := json.Unmarshal([]byte(strings.TrimSpace(list)), &lines); err != nil {
			return "", err
		}
		for i := range lines {
			lines[i].Text = strings.ToUpper(lines[i].Text)
		}
		out, _ := json.Marshal(map[string]any{"subtitles": lines})
		return string(out), nil
	}
}

func TestRefineRewritesText(t *testing.T) {
	var calls int
	client, err := newClient(echoRewrites(&calls), nil)
	if err != nil {
		t.Fatalf("newClient() error: %v", err)
	}

	input := entries(3)
	got, err := client.Refine(context.Background(), input)
	if err != nil {
		t.Fatalf("Refine() error: %v", err)
	}

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	for i, e := range got {
		if e.Text != strings.ToUpper(input[i].Text) {
			t.Errorf("entry %d text = %q", i, e.Text)
		}
		if e.StartTime != input[i].StartTime || e.EndTime != input[i].EndTime || e.ID != input[i].ID {
			t.Errorf("entry %d timing changed: %+v", i, e)
		}
	}
	if input[0].Text != "line 1" {
		t.Error("input entries were modified")
	}
}

func TestRefineBatches(t *testing.T) {
	var calls int
	client, _ := newClient(echoRewrites(&calls), nil)

	got, err := client.Refine(context.Background(), entries(batchSize*2+1))
	if err != nil {
		t.Fatalf("Refine() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if got[len(got)-1].Text != strings.ToUpper(fmt.Sprintf("line %d", batchSize*2+1)) {
		t.Errorf("last entry text = %q", got[len(got)-1].Text)
	}
}

func TestRefineKeepsMissingLines(t *testing.T) {
	complete := func(context.Context, string, string) (string, error) {
		return `[{"id":2,"text":"  ပြင်ပြီး  "},{"id":3,"text":""}]`, nil
	}
	client, _ := newClient(complete, nil)

	got, err := client.Refine(context.Background(), entries(3))
	if err != nil {
		t.Fatalf("Refine() error: %v", err)
	}

	want := []string{"line 1", "ပြင်ပြီး", "line 3"}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("entry %d text = %q, want %q", i, got[i].Text, w)
		}
	}
}

func TestRefineErrors(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"request error", "", errors.New("rate limited")},
		{"empty response", "  ", nil},
		{"invalid json", "{not json", nil},
		{"no known key", `{"other": 1}`, nil},
		{"wrong item type", `{"subtitles": "nope"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete := func(context.Context, string, string) (string, error) {
				return tt.response, tt.err
			}
			client, _ := newClient(complete, nil)

			if _, err := client.Refine(context.Background(), entries(2)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRefineEmpty(t *testing.T) {
	var calls int
	client, _ := newClient(echoRewrites(&calls), nil)

	got, err := client.Refine(context.Background(), nil)
	if err != nil {
		t.Fatalf("Refine() error: %v", err)
	}
	if len(got) != 0 || calls != 0 {
		t.Errorf("got %d entries after %d calls", len(got), calls)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient("", "model", nil); err == nil {
		t.Error("expected error for missing api key")
	}
}
