package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"myansub/internal/translate/gemini"
	"myansub/pkg/config"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCheck bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Inspect credentials for external services",
	Long:  `Inspect the Gemini, Groq and Google Cloud credentials loaded from .env, config.yaml and Secret Manager`,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	Long:  `Verify which services are configured. With --check, call Gemini to confirm the key works.`,
	RunE:  runAuthStatus,
}

func init() {
	authStatusCmd.Flags().BoolVar(&authCheck, "check", false, "Verify the Gemini key by listing models")
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	switch {
	case cfg.GeminiAPIKey == "":
		fmt.Println(authErrorStyle.Render("✗ Gemini: missing GEMINI_API_KEY"))
	case os.Getenv("GEMINI_API_KEY") == "" && cfg.Gemini.APIKeySecret != "":
		fmt.Println(authSuccessStyle.Render("✓ Gemini: API key loaded from Secret Manager"))
	default:
		fmt.Println(authSuccessStyle.Render("✓ Gemini: API key configured"))
	}

	if authCheck && cfg.GeminiAPIKey != "" {
		checkGemini(ctx, cfg)
	}

	if cfg.GroqAPIKey != "" {
		fmt.Println(authSuccessStyle.Render("✓ Groq: API key configured"))
	} else {
		fmt.Println(authInfoStyle.Render("- Groq: not configured (refine disabled)"))
	}

	if !cfg.GCS.Enabled {
		fmt.Println(authInfoStyle.Render("- GCS: disabled"))
		return nil
	}
	if cfg.GCS.Bucket == "" {
		fmt.Println(authErrorStyle.Render("✗ GCS: enabled but no bucket set (GCS_BUCKET)"))
		return nil
	}
	fmt.Println(authSuccessStyle.Render("✓ GCS: bucket " + cfg.GCS.Bucket))
	printGoogleCredentials(ctx, cfg.GCS.CredentialsFile)

	return nil
}

func checkGemini(ctx context.Context, cfg *config.Config) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
	})
	if err == nil {
		var models []string
		models, err = client.Models(ctx)
		if err == nil {
			fmt.Println(authSuccessStyle.Render(fmt.Sprintf("  key accepted, %d models available", len(models))))
			return
		}
	}
	fmt.Println(authErrorStyle.Render(fmt.Sprintf("  key check failed: %v", err)))
}

func printGoogleCredentials(ctx context.Context, credentialsFile string) {
	if os.Getenv("STORAGE_EMULATOR_HOST") != "" {
		fmt.Println(authInfoStyle.Render("  using storage emulator at " + os.Getenv("STORAGE_EMULATOR_HOST")))
		return
	}

	creds, err := googleCredentials(ctx, credentialsFile)
	if err != nil {
		fmt.Println(authErrorStyle.Render(fmt.Sprintf("  no Google credentials: %v", err)))
		fmt.Println(authInfoStyle.Render("  Run: gcloud auth application-default login"))
		return
	}

	token, err := creds.TokenSource.Token()
	if err != nil {
		fmt.Println(authErrorStyle.Render(fmt.Sprintf("  credentials found, token refresh failed: %v", err)))
		return
	}
	fmt.Println(authSuccessStyle.Render("  credentials valid, token " + tokenExpiry(token)))
}

func googleCredentials(ctx context.Context, credentialsFile string) (*google.Credentials, error) {
	if credentialsFile == "" {
		return google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	return google.CredentialsFromJSON(ctx, data, storage.ScopeReadWrite)
}

func tokenExpiry(token *oauth2.Token) string {
	if token.Expiry.IsZero() {
		return "does not expire"
	}
	return "expires in " + time.Until(token.Expiry).Round(time.Second).String()
}
