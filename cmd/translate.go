package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"myansub/internal/app"
	"myansub/internal/subtitle"
	"myansub/internal/translate"
	"myansub/internal/translate/gemini"
	"myansub/pkg/config"
)

var (
	translateFormat    string
	translateOutDir    string
	translateUpload    bool
	translateGCSPrefix string
	translateRefine    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [video|dir|gs://bucket/object]...",
	Short: "Generate Myanmar subtitles for videos",
	Long: `Translate the Chinese speech of each video into Myanmar subtitles.
Videos are processed one at a time. Directories are expanded to the videos they contain.`,
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVarP(&translateFormat, "format", "f", "", "Subtitle format: srt or vtt (default from config)")
	translateCmd.Flags().StringVarP(&translateOutDir, "out", "o", "", "Output directory (default from config)")
	translateCmd.Flags().BoolVarP(&translateUpload, "upload", "u", false, "Also upload subtitles to the GCS bucket")
	translateCmd.Flags().BoolVarP(&translateRefine, "refine", "r", false, "Polish the subtitle wording with Groq before writing (needs GROQ_API_KEY)")
	translateCmd.Flags().StringVar(&translateGCSPrefix, "gcs-prefix", "", "Translate every video under this prefix of the GCS bucket")
	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && translateGCSPrefix == "" {
		return errors.New("please provide a video or --gcs-prefix")
	}

	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if translateOutDir != "" {
		cfg.Video.OutputDir = translateOutDir
	}

	var format subtitle.Format
	if translateFormat != "" {
		if format, err = subtitle.ParseFormat(translateFormat); err != nil {
			return err
		}
	}

	if translateRefine && cfg.GroqAPIKey == "" {
		return errors.New("--refine needs GROQ_API_KEY, run: myansub setup")
	}

	service, err := app.BuildService(ctx, cfg)
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		return fmt.Errorf("%s (GEMINI_API_KEY is not set, run: myansub setup)", describeError(err))
	}
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	inputs, err := service.ExpandInputs(ctx, args, translateGCSPrefix)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return errors.New("no videos found")
	}

	lang := service.Language()
	pipeline := app.NewPipeline(service)

	var failed int
	for _, input := range inputs {
		stop := watchProgress(service.Tracker())
		result, err := pipeline.Run(ctx, app.Input{
			Ref:    input,
			Format: format,
			Upload: translateUpload,
			Refine: translateRefine,
		})
		stop()

		if err != nil {
			failed++
			fmt.Println(failStyle.Render(fmt.Sprintf("✗ %s: %s", input, describeError(err))))
			slog.Debug("Translation failed", "video", input, "error", err)
			continue
		}

		if len(result.Entries) == 0 {
			fmt.Println(warnStyle.Render(translate.Message(lang, translate.MsgNoSpeech)))
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s -> %s (%d subtitles)", input, result.OutputPath, len(result.Entries))))
		if result.RemotePath != "" {
			fmt.Println(infoStyle.Render("  uploaded to " + result.RemotePath))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(inputs))
	}
	return nil
}

// describeError shows the localized message for classified failures and the
// error itself for local problems such as a missing file.
func describeError(err error) string {
	var classified *translate.Error
	if errors.As(err, &classified) {
		return classified.Message
	}
	return err.Error()
}
