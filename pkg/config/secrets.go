package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

type SecretAccessor interface {
	AccessSecret(ctx context.Context, name string) (string, error)
}

type secretManagerAccessor struct{}

func (secretManagerAccessor) AccessSecret(ctx context.Context, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("access secret: %w", err)
	}

	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

var secrets SecretAccessor = secretManagerAccessor{}

func resolveSecrets(ctx context.Context, cfg *Config) error {
	if cfg.GeminiAPIKey != "" || cfg.Gemini.APIKeySecret == "" {
		return nil
	}

	name, err := SecretName(cfg.GCPProject, cfg.Gemini.APIKeySecret)
	if err != nil {
		return err
	}

	slog.Debug("Reading Gemini API key from Secret Manager", "secret", name)

	key, err := secrets.AccessSecret(ctx, name)
	if err != nil {
		return fmt.Errorf("gemini api key: %w", err)
	}
	cfg.GeminiAPIKey = key

	return nil
}
