package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"myansub/internal/translate/gemini"
)

const (
	envFile        = ".env"
	configFile     = "config.yaml"
	geminiKeyURL   = "https://aistudio.google.com/apikey"
	groqKeyURL     = "https://console.groq.com/keys"
	fallbackModel  = "gemini-3-flash-preview"
	setupOutputDir = "output"
	setupCacheDir  = ".cache"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for myansub",
	Long:  `Configure API keys, pick a Gemini model, and create the output directories.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

type setupAnswers struct {
	env      map[string]string
	model    string
	language string
	bucket   string
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎬 myansub setup"))

	answers := &setupAnswers{env: make(map[string]string)}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Creating directories", createDirectories},
		{"Configuring Gemini", func() error { return configureGemini(cmd.Context(), answers) }},
		{"Configuring optional services", func() error { return configureOptional(answers) }},
		{"Writing configuration", func() error { return writeSetup(answers) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	printNextSteps()
	return nil
}

func createDirectories() error {
	for _, dir := range []string{setupOutputDir, setupCacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureGemini(ctx context.Context, answers *setupAnswers) error {
	var openPage bool
	if err := huh.NewConfirm().
		Title("Open Google AI Studio to create an API key?").
		Description(geminiKeyURL).
		Value(&openPage).
		Run(); err != nil {
		return err
	}
	if openPage {
		if err := browser.OpenURL(geminiKeyURL); err != nil {
			fmt.Println(warnStyle.Render("Could not open a browser, visit " + geminiKeyURL))
		}
	}

	var apiKey string
	if err := huh.NewInput().
		Title("Gemini API Key").
		Description(geminiKeyURL).
		EchoMode(huh.EchoModePassword).
		Value(&apiKey).
		Validate(required("Gemini API Key")).
		Run(); err != nil {
		return err
	}
	apiKey = strings.TrimSpace(apiKey)
	answers.env["GEMINI_API_KEY"] = apiKey

	var models []string
	err := runWithSpinner("Checking API key", func() error {
		client, err := gemini.NewClient(ctx, gemini.Options{APIKey: apiKey, Model: fallbackModel})
		if err != nil {
			return err
		}
		models, err = client.Models(ctx)
		return err
	})
	if err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("Could not verify the key: %v", err)))
	}

	answers.model = fallbackModel
	if len(models) == 0 {
		return nil
	}

	return huh.NewSelect[string]().
		Title("Gemini model").
		Description("Must accept video input").
		Options(huh.NewOptions(withFallback(models, fallbackModel)...)...).
		Value(&answers.model).
		Run()
}

func withFallback(models []string, fallback string) []string {
	for _, m := range models {
		if m == fallback {
			return models
		}
	}
	return append([]string{fallback}, models...)
}

func configureOptional(answers *setupAnswers) error {
	var groqKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Status message language").
				Options(
					huh.NewOption("Myanmar", "my"),
					huh.NewOption("English", "en"),
				).
				Value(&answers.language),
			huh.NewInput().
				Title("Groq API Key (optional)").
				Description("Enables `myansub refine`. " + groqKeyURL).
				EchoMode(huh.EchoModePassword).
				Value(&groqKey),
			huh.NewInput().
				Title("GCS bucket (optional)").
				Description("For gs:// videos and subtitle uploads").
				Value(&answers.bucket),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if key := strings.TrimSpace(groqKey); key != "" {
		answers.env["GROQ_API_KEY"] = key
	}
	answers.bucket = strings.TrimSpace(answers.bucket)
	if answers.bucket != "" {
		answers.env["GCS_BUCKET"] = answers.bucket
	}
	return nil
}

func writeSetup(answers *setupAnswers) error {
	if err := writeEnvFile(answers.env); err != nil {
		return err
	}
	return writeConfigFile(answers)
}

func writeEnvFile(env map[string]string) error {
	if !confirmOverwrite(envFile) {
		fmt.Println(infoStyle.Render("Kept existing " + envFile))
		return nil
	}

	if err := godotenv.Write(env, envFile); err != nil {
		return err
	}
	if err := os.Chmod(envFile, 0600); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Wrote " + envFile))
	return nil
}

func writeConfigFile(answers *setupAnswers) error {
	if !confirmOverwrite(configFile) {
		fmt.Println(infoStyle.Render("Kept existing " + configFile))
		return nil
	}

	doc := map[string]any{
		"gemini":    map[string]any{"model": answers.model},
		"messages":  map[string]any{"language": answers.language},
		"subtitles": map[string]any{"format": "srt"},
		"video":     map[string]any{"output_dir": "./" + setupOutputDir, "cache_dir": "./" + setupCacheDir},
	}
	if answers.bucket != "" {
		doc["gcs"] = map[string]any{"enabled": true, "bucket": answers.bucket}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Wrote " + configFile))
	return nil
}

func confirmOverwrite(path string) bool {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return true
	}

	var overwrite bool
	if err := huh.NewConfirm().
		Title(fmt.Sprintf("Found existing %s", path)).
		Description("Overwrite?").
		Value(&overwrite).
		Run(); err != nil {
		return false
	}
	return overwrite
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check your keys: myansub auth status")
	fmt.Println("  2. Run: myansub translate path/to/video.mp4")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
