package translate

import (
	"context"

	"myansub/internal/media"
	"myansub/internal/subtitle"
)

// Reporter receives progress milestones (message, percent 0-100).
type Reporter func(message string, progress int)

// Translator turns an encoded video into subtitle entries with a single remote call.
// Failures are returned as *Error.
type Translator interface {
	Translate(ctx context.Context, video media.Video, report Reporter) ([]subtitle.Entry, error)
}

type TranslatorFunc func(ctx context.Context, video media.Video, report Reporter) ([]subtitle.Entry, error)

func (f TranslatorFunc) Translate(ctx context.Context, video media.Video, report Reporter) ([]subtitle.Entry, error) {
	return f(ctx, video, report)
}
