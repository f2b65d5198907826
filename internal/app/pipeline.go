package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"myansub/internal/media"
	"myansub/internal/progress"
	"myansub/internal/subtitle"
	"myansub/internal/translate"
)

// ErrSuperseded is returned by a run whose result was discarded because a newer
// run started while it was waiting on the remote service.
var ErrSuperseded = errors.New("run superseded by a newer upload")

type Pipeline struct {
	service *Service

	mu    sync.Mutex
	names map[string]string
}

type Input struct {
	Ref    string
	Format subtitle.Format
	Upload bool
	// Refine runs the service's refiner over the entries before rendering.
	Refine bool
}

type Result struct {
	RunID      string
	Entries    []subtitle.Entry
	Document   string
	Format     subtitle.Format
	OutputName string
	OutputPath string
	RemotePath string
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service, names: make(map[string]string)}
}

// Run takes one video through encode, translate and render. Oversized videos
// are rejected before any status change or remote call.
func (pipeline *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	svc := pipeline.service
	lang := svc.Language()
	tracker := svc.Tracker()

	format := in.Format
	if format == "" {
		var err error
		if format, err = subtitle.ParseFormat(svc.cfg.Subtitles.Format); err != nil {
			return nil, err
		}
	}

	if in.Refine && svc.Refiner() == nil {
		return nil, errors.New("refine requested but GROQ_API_KEY is not set")
	}

	path, err := svc.Resolve(ctx, in.Ref)
	if errors.Is(err, media.ErrTooLarge) {
		slog.Warn("Video rejected before download", "video", in.Ref, "error", err)
		return nil, tooLarge(err, lang)
	}
	if err != nil {
		return nil, err
	}

	limit := svc.cfg.MaxVideoBytes()
	if err := pipeline.checkSize(path, limit, lang); err != nil {
		slog.Warn("Video rejected before upload", "video", in.Ref, "error", err)
		return nil, err
	}

	runID := tracker.Begin(10, translate.Message(lang, translate.MsgPreparing))
	slog.Info("Translating video", "video", in.Ref, "run", runID)

	video, err := media.EncodeFile(path, limit)
	if err != nil {
		slog.Error("Failed to encode video", "video", in.Ref, "error", err)
		return nil, pipeline.fail(runID, translate.Fail(err, lang))
	}
	if svc.cfg.Video.DefaultMIMEType != "" && video.MIMEType == media.DefaultMIMEType {
		video.MIMEType = svc.cfg.Video.DefaultMIMEType
	}

	if err := tracker.Advance(runID, progress.StepAnalyzing, 20, translate.Message(lang, translate.MsgAnalyzing)); err != nil {
		return nil, superseded(err)
	}

	entries, err := svc.Translator().Translate(ctx, video, tracker.Reporter(runID, milestoneStep))
	if tracker.RunID() != runID {
		slog.Info("Discarding result of superseded run", "video", in.Ref, "run", runID)
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, pipeline.fail(runID, translate.Classify(err, lang))
	}

	if err := pipeline.check(entries, lang); err != nil {
		return nil, pipeline.fail(runID, err)
	}

	if in.Refine && len(entries) > 0 {
		if err := tracker.Advance(runID, progress.StepTranslating, 92, translate.Message(lang, translate.MsgRefining)); err != nil {
			return nil, superseded(err)
		}
		entries = pipeline.refine(ctx, in.Ref, entries)
		if tracker.RunID() != runID {
			slog.Info("Discarding result of superseded run", "video", in.Ref, "run", runID)
			return nil, ErrSuperseded
		}
	}

	if err := tracker.Advance(runID, progress.StepGenerating, 95, translate.Message(lang, translate.MsgGenerating)); err != nil {
		return nil, superseded(err)
	}

	result := &Result{
		RunID:      runID,
		Entries:    entries,
		Document:   format.Render(entries),
		Format:     format,
		OutputName: pipeline.claimName(in.Ref, OutputName(video.Name, format)),
	}

	if err := pipeline.save(ctx, result, in.Upload); err != nil {
		slog.Error("Failed to save subtitles", "video", in.Ref, "error", err)
		return nil, pipeline.fail(runID, err)
	}

	if len(entries) == 0 {
		slog.Warn("No dialogue found in video", "video", in.Ref)
	}

	if err := tracker.Complete(runID, translate.Message(lang, translate.MsgCompleted)); err != nil {
		return nil, superseded(err)
	}

	slog.Info("Translation completed", "video", in.Ref, "entries", len(entries), "output", result.OutputPath)

	return result, nil
}

// Reset abandons any in-flight run and returns the status to idle.
func (pipeline *Pipeline) Reset() {
	pipeline.service.Tracker().Reset()
}

func (pipeline *Pipeline) checkSize(path string, limit int64, lang translate.Language) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}

	if err := media.CheckSize(info.Size(), limit); err != nil {
		return tooLarge(err, lang)
	}
	return nil
}

func tooLarge(err error, lang translate.Language) error {
	return &translate.Error{
		Kind:    media.ErrTooLarge,
		Message: translate.Message(lang, translate.MsgFileTooLarge),
		Err:     err,
	}
}

// refine keeps the unrefined entries when the refiner fails; the translation
// itself already succeeded.
func (pipeline *Pipeline) refine(ctx context.Context, ref string, entries []subtitle.Entry) []subtitle.Entry {
	refined, err := pipeline.service.Refiner().Refine(ctx, entries)
	if err != nil {
		slog.Warn("Refinement failed, keeping translated text", "video", ref, "error", err)
		return entries
	}
	return refined
}

// claimName reserves name for ref within this pipeline. A name already taken by
// another video gets a numeric suffix (clip-2.srt) so earlier results are not
// overwritten. Re-running the same video keeps its name.
func (pipeline *Pipeline) claimName(ref, name string) string {
	pipeline.mu.Lock()
	defer pipeline.mu.Unlock()

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := name
	for n := 2; ; n++ {
		owner, taken := pipeline.names[candidate]
		if !taken || owner == ref {
			pipeline.names[candidate] = ref
			if candidate != name {
				slog.Warn("Output name already used in this run", "video", ref, "name", name, "renamed", candidate)
			}
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}

func (pipeline *Pipeline) check(entries []subtitle.Entry, lang translate.Language) error {
	issues := subtitle.Check(entries)
	for _, issue := range issues {
		slog.Warn("Subtitle entry looks wrong", "id", issue.ID, "problem", issue.Problem)
	}

	if len(issues) > 0 && pipeline.service.cfg.Subtitles.Strict {
		return translate.Fail(fmt.Errorf("%d subtitle entries failed validation, first: %s", len(issues), issues[0]), lang)
	}
	return nil
}

func (pipeline *Pipeline) save(ctx context.Context, result *Result, upload bool) error {
	svc := pipeline.service
	data := []byte(result.Document)

	if svc.Sink() != nil {
		path, err := svc.Sink().Save(ctx, result.OutputName, data)
		if err != nil {
			return fmt.Errorf("save subtitles: %w", err)
		}
		result.OutputPath = path
	}

	if upload {
		if svc.Remote() == nil {
			return errors.New("upload requested but GCS is not enabled")
		}
		uri, err := svc.Remote().Save(ctx, result.OutputName, data)
		if err != nil {
			return fmt.Errorf("upload subtitles: %w", err)
		}
		result.RemotePath = uri
	}

	return nil
}

// fail moves the run to the error step with the user-facing message of err.
func (pipeline *Pipeline) fail(runID string, err error) error {
	lang := pipeline.service.Language()
	if ferr := pipeline.service.Tracker().Fail(runID, translate.UserMessage(err, lang)); errors.Is(ferr, progress.ErrStaleRun) {
		return ErrSuperseded
	}
	return err
}

func superseded(err error) error {
	if errors.Is(err, progress.ErrStaleRun) {
		return ErrSuperseded
	}
	return err
}

// milestoneStep maps the translator's progress milestones onto steps:
// the request is in analysis until the response is back and being finalized.
func milestoneStep(pct int) progress.Step {
	if pct >= 90 {
		return progress.StepTranslating
	}
	return progress.StepAnalyzing
}
