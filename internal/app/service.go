package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"myansub/internal/progress"
	"myansub/internal/refine"
	"myansub/internal/storage"
	"myansub/internal/translate"
	"myansub/pkg/config"
)

// RemoteStore is object storage that can both provide videos and keep subtitles.
type RemoteStore interface {
	storage.Sink
	storage.Source
	ListVideos(ctx context.Context, prefix string) ([]string, error)
}

type Service struct {
	cfg        *config.Config
	translator translate.Translator
	refiner    refine.Refiner
	tracker    *progress.Tracker
	sink       storage.Sink
	remote     RemoteStore
	closers    []func() error
}

type ServiceOptions struct {
	Config     *config.Config
	Translator translate.Translator
	Refiner    refine.Refiner
	Tracker    *progress.Tracker
	Sink       storage.Sink
	Remote     RemoteStore
}

func NewService(opts ServiceOptions) *Service {
	tracker := opts.Tracker
	if tracker == nil {
		lang := translate.Myanmar
		if opts.Config != nil {
			lang = translate.ParseLanguage(opts.Config.Messages.Language)
		}
		tracker = progress.NewTracker(translate.Message(lang, translate.MsgReady))
	}

	return &Service{
		cfg:        opts.Config,
		translator: opts.Translator,
		refiner:    opts.Refiner,
		tracker:    tracker,
		sink:       opts.Sink,
		remote:     opts.Remote,
	}
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

func (s *Service) Translator() translate.Translator {
	return s.translator
}

func (s *Service) Refiner() refine.Refiner {
	return s.refiner
}

func (s *Service) Tracker() *progress.Tracker {
	return s.tracker
}

func (s *Service) Sink() storage.Sink {
	return s.sink
}

func (s *Service) Remote() RemoteStore {
	return s.remote
}

func (s *Service) Language() translate.Language {
	if s.cfg == nil {
		return translate.Myanmar
	}
	return translate.ParseLanguage(s.cfg.Messages.Language)
}

func (s *Service) Close() error {
	var errs []error
	for _, closeFn := range s.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// Resolve returns a local path for a video reference, downloading gs:// objects.
func (s *Service) Resolve(ctx context.Context, ref string) (string, error) {
	if storage.IsGCSURI(ref) {
		if s.remote == nil {
			return "", fmt.Errorf("%s: GCS is not enabled", ref)
		}
		return s.remote.Fetch(ctx, ref)
	}

	info, err := os.Stat(ref)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", ref)
	}
	return ref, nil
}

// ExpandInputs turns directories into the videos they contain and appends the
// videos found under gcsPrefix. Order is preserved.
func (s *Service) ExpandInputs(ctx context.Context, refs []string, gcsPrefix string) ([]string, error) {
	var inputs []string
	for _, ref := range refs {
		if storage.IsGCSURI(ref) {
			inputs = append(inputs, ref)
			continue
		}

		info, err := os.Stat(ref)
		if err != nil {
			return nil, fmt.Errorf("open video: %w", err)
		}
		if !info.IsDir() {
			inputs = append(inputs, ref)
			continue
		}

		videos, err := storage.ListVideos(ref)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, videos...)
	}

	if gcsPrefix != "" {
		if s.remote == nil {
			return nil, errors.New("--gcs-prefix needs gcs.enabled and a bucket")
		}
		videos, err := s.remote.ListVideos(ctx, gcsPrefix)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, videos...)
	}

	return inputs, nil
}
