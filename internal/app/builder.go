package app

import (
	"context"
	"log/slog"

	"myansub/internal/progress"
	"myansub/internal/refine/groq"
	"myansub/internal/storage"
	"myansub/internal/translate"
	"myansub/internal/translate/gemini"
	"myansub/pkg/config"
	"myansub/pkg/httputil"
	"myansub/pkg/prompts"
)

func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	lang := translate.ParseLanguage(cfg.Messages.Language)

	translator, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.Gemini.Model,
		BaseURL:    cfg.Gemini.BaseURL,
		HTTPClient: httputil.NewClient(cfg.Gemini.MaxResponseBytes, 0),
		Prompts:    p,
		Language:   lang,
		MaxEntries: cfg.Subtitles.MaxEntries,
	})
	if err != nil {
		return nil, err
	}

	localStorage := storage.NewLocalStorage(cfg.Video.OutputDir)
	if err := localStorage.EnsureDirectories(); err != nil {
		return nil, err
	}

	opts := ServiceOptions{
		Config:     cfg,
		Translator: translator,
		Tracker:    progress.NewTracker(translate.Message(lang, translate.MsgReady)),
		Sink:       localStorage,
	}

	if cfg.GroqAPIKey != "" {
		refiner, err := groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model, p)
		if err != nil {
			return nil, err
		}
		opts.Refiner = refiner
	}

	var gcs *storage.GCSStorage
	if cfg.GCS.Enabled {
		gcs, err = storage.NewGCSStorage(ctx, storage.GCSOptions{
			Bucket:          cfg.GCS.Bucket,
			OutputPrefix:    cfg.GCS.OutputPrefix,
			CacheDir:        cfg.Video.CacheDir,
			CredentialsFile: cfg.GCS.CredentialsFile,
			MaxObjectSize:   cfg.MaxVideoBytes(),
		})
		if err != nil {
			return nil, err
		}
		opts.Remote = gcs
	}

	service := NewService(opts)
	if gcs != nil {
		service.closers = append(service.closers, gcs.Close)
	}

	slog.Debug("Service ready",
		"model", cfg.Gemini.Model,
		"language", lang,
		"gcs", cfg.GCS.Enabled,
		"refine", opts.Refiner != nil,
	)

	return service, nil
}
