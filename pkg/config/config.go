package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath       = "config.yaml"
	defaultGeminiModel      = "gemini-3-flash-preview"
	defaultGroqModel        = "llama-3.3-70b-versatile"
	defaultMaxResponseBytes = 8 << 20
	defaultMaxSizeMB        = 50
	defaultOutputDir        = "./output"
	defaultCacheDir         = "./.cache"
	defaultMIMEType         = "video/mp4"
	defaultFormat           = "srt"
	defaultMaxEntries       = 10000
	defaultGCSOutputPrefix  = "subtitles"
	defaultLanguage         = "my"
)

type Config struct {
	GeminiAPIKey string
	GroqAPIKey   string
	GCPProject   string

	Gemini    GeminiConfig    `yaml:"gemini"`
	Groq      GroqConfig      `yaml:"groq"`
	Video     VideoConfig     `yaml:"video"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	GCS       GCSConfig       `yaml:"gcs"`
	Messages  MessagesConfig  `yaml:"messages"`
}

type GeminiConfig struct {
	Model            string `yaml:"model"`
	APIKeySecret     string `yaml:"api_key_secret"`
	BaseURL          string `yaml:"base_url"`
	MaxResponseBytes int64  `yaml:"max_response_bytes"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type VideoConfig struct {
	MaxSizeMB       int64  `yaml:"max_size_mb"`
	OutputDir       string `yaml:"output_dir"`
	CacheDir        string `yaml:"cache_dir"`
	DefaultMIMEType string `yaml:"default_mime_type"`
}

type SubtitlesConfig struct {
	Format     string `yaml:"format"`
	Strict     bool   `yaml:"strict"`
	MaxEntries int    `yaml:"max_entries"`
}

type GCSConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	OutputPrefix    string `yaml:"output_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type MessagesConfig struct {
	Language string `yaml:"language"`
}

// MaxVideoBytes is the client-side upload limit in bytes.
func (c *Config) MaxVideoBytes() int64 {
	return c.Video.MaxSizeMB << 20
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		GCPProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	if err := loadYAMLConfig(cfg, os.Getenv("MYANSUB_CONFIG")); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := resolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			slog.Warn("No config.yaml found, using defaults")
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.GCS.Bucket = getEnvOrDefault("GCS_BUCKET", cfg.GCS.Bucket)
	cfg.GCS.CredentialsFile = getEnvOrDefault("GOOGLE_APPLICATION_CREDENTIALS", cfg.GCS.CredentialsFile)
}

func applyDefaults(cfg *Config) {
	applyGeminiDefaults(cfg)
	applyGroqDefaults(cfg)
	applyVideoDefaults(cfg)
	applySubtitlesDefaults(cfg)
	applyGCSDefaults(cfg)
	applyMessagesDefaults(cfg)
}

func applyGeminiDefaults(cfg *Config) {
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaultGeminiModel
	}
	if cfg.Gemini.MaxResponseBytes <= 0 {
		cfg.Gemini.MaxResponseBytes = defaultMaxResponseBytes
	}
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.MaxSizeMB <= 0 {
		cfg.Video.MaxSizeMB = defaultMaxSizeMB
	}
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.CacheDir == "" {
		cfg.Video.CacheDir = defaultCacheDir
	}
	if cfg.Video.DefaultMIMEType == "" {
		cfg.Video.DefaultMIMEType = defaultMIMEType
	}
}

func applySubtitlesDefaults(cfg *Config) {
	if cfg.Subtitles.Format == "" {
		cfg.Subtitles.Format = defaultFormat
	}
	if cfg.Subtitles.MaxEntries <= 0 {
		cfg.Subtitles.MaxEntries = defaultMaxEntries
	}
}

func applyGCSDefaults(cfg *Config) {
	if cfg.GCS.OutputPrefix == "" {
		cfg.GCS.OutputPrefix = defaultGCSOutputPrefix
	}
	if cfg.GCS.Bucket != "" && !cfg.GCS.Enabled {
		slog.Debug("GCS bucket configured but gcs.enabled is false", "bucket", cfg.GCS.Bucket)
	}
}

func applyMessagesDefaults(cfg *Config) {
	if cfg.Messages.Language == "" {
		cfg.Messages.Language = defaultLanguage
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SecretName expands a bare secret id into a full version resource name.
func SecretName(project, secret string) (string, error) {
	if strings.HasPrefix(secret, "projects/") {
		return secret, nil
	}
	if project == "" {
		return "", fmt.Errorf("secret %q needs GOOGLE_CLOUD_PROJECT or a full resource name", secret)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secret), nil
}
