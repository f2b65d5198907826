package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/conneroisu/groq-go"

	"myansub/internal/refine"
	"myansub/internal/subtitle"
	"myansub/pkg/prompts"
)

const batchSize = 50

var _ refine.Refiner = (*Client)(nil)

type completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

type Client struct {
	complete completeFunc
	prompts  *prompts.Prompts
}

type line struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

func NewClient(apiKey, model string, p *prompts.Prompts) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq api key is not configured")
	}

	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	chatModel := groq.ChatModel(model)
	complete := func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		resp, err := client.ChatCompletion(ctx, groq.ChatCompletionRequest{
			Model: chatModel,
			Messages: []groq.ChatCompletionMessage{
				{Role: groq.RoleSystem, Content: systemPrompt},
				{Role: groq.RoleUser, Content: userPrompt},
			},
			ResponseFormat: &groq.ChatResponseFormat{Type: "json_object"},
		})
		if err != nil {
			return "", fmt.Errorf("generate: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no response")
		}
		return resp.Choices[0].Message.Content, nil
	}

	return newClient(complete, p)
}

func newClient(complete completeFunc, p *prompts.Prompts) (*Client, error) {
	if p == nil {
		var err error
		if p, err = prompts.Default(); err != nil {
			return nil, err
		}
	}
	return &Client{complete: complete, prompts: p}, nil
}

// Refine sends the entries in batches and replaces each text with the rewrite
// returned for its id. Entries without a usable rewrite keep their text.
func (c *Client) Refine(ctx context.Context, entries []subtitle.Entry) ([]subtitle.Entry, error) {
	refined := make([]subtitle.Entry, len(entries))
	copy(refined, entries)

	for start := 0; start < len(refined); start += batchSize {
		end := min(start+batchSize, len(refined))

		rewrites, err := c.refineBatch(ctx, refined[start:end])
		if err != nil {
			return nil, err
		}

		for i := start; i < end; i++ {
			if text, ok := rewrites[refined[i].ID]; ok {
				refined[i].Text = text
			}
		}
	}

	return refined, nil
}

func (c *Client) refineBatch(ctx context.Context, batch []subtitle.Entry) (map[int]string, error) {
	lines := make([]line, len(batch))
	for i, e := range batch {
		lines[i] = line{ID: e.ID, Text: e.Text}
	}

	payload, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode subtitles: %w", err)
	}

	prompt, err := c.prompts.RenderRefine(prompts.RefineParams{
		TargetLanguage: "Myanmar (Burmese)",
		Entries:        string(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := c.complete(ctx, c.prompts.System.Refine, prompt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("empty response")
	}

	slog.Debug("Groq refine raw response", "content", content)

	returned, err := parseLines(content)
	if err != nil {
		return nil, err
	}

	rewrites := make(map[int]string, len(returned))
	for _, l := range returned {
		text := strings.TrimSpace(l.Text)
		if text == "" {
			continue
		}
		rewrites[l.ID] = text
	}

	if len(rewrites) < len(batch) {
		slog.Warn("Groq refine skipped lines", "requested", len(batch), "returned", len(rewrites))
	}

	return rewrites, nil
}

func parseLines(content string) ([]line, error) {
	var direct []line
	if err := json.Unmarshal([]byte(content), &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	for _, key := range []string{"subtitles", "entries", "lines", "results"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		var items []line
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parse response: %w", err)
		}
		return items, nil
	}

	return nil, fmt.Errorf("no subtitles found in response")
}
