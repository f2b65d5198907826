package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"google.golang.org/genai"

	"myansub/internal/media"
	"myansub/internal/subtitle"
	"myansub/internal/translate"
	"myansub/pkg/prompts"
)

var ErrMissingAPIKey = errors.New("gemini api key is not configured")

var _ translate.Translator = (*Client)(nil)

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Prompts    *prompts.Prompts
	Language   translate.Language
	MaxEntries int
}

type Client struct {
	client     *genai.Client
	model      string
	prompt     string
	lang       translate.Language
	maxEntries int
}

var subtitleSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":        {Type: genai.TypeInteger},
			"startTime": {Type: genai.TypeString, Description: "Start time in HH:MM:SS,mmm format"},
			"endTime":   {Type: genai.TypeString, Description: "End time in HH:MM:SS,mmm format"},
			"text":      {Type: genai.TypeString, Description: "Natural Myanmar translation"},
		},
		Required:         []string{"id", "startTime", "endTime", "text"},
		PropertyOrdering: []string{"id", "startTime", "endTime", "text"},
	},
}

// NewClient fails with a TranslationFailed error wrapping ErrMissingAPIKey when
// no key is configured, so callers show the same message as a failed call.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	lang := opts.Language
	if lang == "" {
		lang = translate.Myanmar
	}

	if opts.APIKey == "" {
		slog.Error("Gemini client not created", "error", ErrMissingAPIKey)
		return nil, translate.Fail(ErrMissingAPIKey, lang)
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("gemini model is not configured")
	}

	p := opts.Prompts
	if p == nil {
		var err error
		if p, err = prompts.Default(); err != nil {
			return nil, err
		}
	}

	prompt, err := p.RenderTranslate(prompts.DefaultTranslateParams())
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	cfg := &genai.ClientConfig{
		APIKey:     opts.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:     client,
		model:      opts.Model,
		prompt:     prompt,
		lang:       lang,
		maxEntries: opts.MaxEntries,
	}, nil
}

// Translate sends the instruction and the inline video in one request and maps
// the structured response to subtitle entries.
func (c *Client) Translate(ctx context.Context, video media.Video, report translate.Reporter) ([]subtitle.Entry, error) {
	if report == nil {
		report = func(string, int) {}
	}

	data, err := video.Bytes()
	if err != nil {
		slog.Error("Failed to decode video payload", "video", video.Name, "error", err)
		return nil, translate.Fail(err, c.lang)
	}

	mimeType := video.MIMEType
	if mimeType == "" {
		mimeType = media.DefaultMIMEType
	}

	report(translate.Message(c.lang, translate.MsgAnalyzingRemote), 30)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(c.prompt),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   subtitleSchema,
	})
	if err != nil {
		slog.Error("Gemini translation request failed", "model", c.model, "video", video.Name, "error", err)
		return nil, c.classify(err)
	}

	report(translate.Message(c.lang, translate.MsgFinalizing), 90)

	entries, err := subtitle.ParseLimited(resp.Text(), c.maxEntries)
	if err != nil {
		slog.Error("Gemini response rejected", "model", c.model, "video", video.Name, "error", err)
		return nil, translate.Fail(fmt.Errorf("parse response: %w", err), c.lang)
	}

	slog.Debug("Gemini translation parsed", "video", video.Name, "entries", len(entries))

	return entries, nil
}

func (c *Client) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusRequestEntityTooLarge {
		return &translate.Error{
			Kind:    translate.ErrPayloadTooLarge,
			Message: translate.Message(c.lang, translate.MsgPayloadTooLarge),
			Err:     err,
		}
	}
	return translate.Classify(err, c.lang)
}

// Models lists the models that accept generateContent, without the "models/" prefix.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if !slices.Contains(m.SupportedActions, "generateContent") {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}
