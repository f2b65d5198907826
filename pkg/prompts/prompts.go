package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

//go:embed prompts.yaml
var defaultPrompts []byte

type Prompts struct {
	System    SystemPrompts    `yaml:"system"`
	Translate TranslatePrompts `yaml:"translate"`
	Refine    RefinePrompts    `yaml:"refine"`
}

type SystemPrompts struct {
	Refine string `yaml:"refine"`
}

type TranslatePrompts struct {
	Video string `yaml:"video"`
}

type RefinePrompts struct {
	Entries string `yaml:"entries"`
}

type TranslateParams struct {
	SourceLanguage  string
	TargetLanguage  string
	Particles       string
	TimestampFormat string
	Example         string
}

type RefineParams struct {
	TargetLanguage string
	Entries        string
}

func DefaultTranslateParams() TranslateParams {
	particles := []string{"ဗျာ", "ရှင့်", "နော်", "လေ"}
	quoted := make([]string, len(particles))
	for i, p := range particles {
		quoted[i] = "'" + p + "'"
	}

	return TranslateParams{
		SourceLanguage:  "Chinese",
		TargetLanguage:  "Myanmar (Burmese)",
		Particles:       strings.Join(quoted, ", "),
		TimestampFormat: "HH:MM:SS,mmm",
		Example:         "00:00:01,200",
	}
}

func Default() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(defaultPrompts, &p); err != nil {
		return nil, fmt.Errorf("failed to parse default prompts: %w", err)
	}
	return &p, nil
}

// Load uses ./prompts.yaml when present and the embedded defaults otherwise.
func Load() (*Prompts, error) {
	p, err := LoadFrom(defaultPromptsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	return p, err
}

// LoadFrom overlays the file at path on the embedded defaults.
func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	p, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderTranslate(params TranslateParams) (string, error) {
	return render(p.Translate.Video, params)
}

func (p *Prompts) RenderRefine(params RefineParams) (string, error) {
	return render(p.Refine.Entries, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
