package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"myansub/internal/refine/groq"
	"myansub/internal/subtitle"
	"myansub/pkg/config"
	"myansub/pkg/prompts"
)

var refineOut string

var refineCmd = &cobra.Command{
	Use:   "refine <subtitles.srt>",
	Short: "Polish subtitle text into more colloquial Myanmar",
	Long: `Send an existing SRT file through a Groq chat model that rewrites each line
into more natural spoken Myanmar. Ids and timings are kept as they are.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().StringVarP(&refineOut, "out", "o", "", "Output file (default: <name>.refined.srt next to the input)")
	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input := args[0]

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if cfg.GroqAPIKey == "" {
		return errors.New("GROQ_API_KEY is not set, run: myansub setup")
	}

	p, err := prompts.Load()
	if err != nil {
		return err
	}

	refiner, err := groq.NewClient(cfg.GroqAPIKey, cfg.Groq.Model, p)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open subtitles: %w", err)
	}
	entries, err := subtitle.ReadSRT(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	slog.Info("Refining subtitles", "file", input, "entries", len(entries), "model", cfg.Groq.Model)

	var refined []subtitle.Entry
	err = runWithSpinner(fmt.Sprintf("Refining %d subtitles", len(entries)), func() error {
		var refineErr error
		refined, refineErr = refiner.Refine(ctx, entries)
		return refineErr
	})
	if err != nil {
		return err
	}

	out := refineOut
	if out == "" {
		out = refinedPath(input)
	}

	format, err := subtitle.ParseFormat(strings.TrimPrefix(filepath.Ext(out), "."))
	if err != nil {
		return err
	}

	if err := os.WriteFile(out, []byte(format.Render(refined)), 0644); err != nil {
		return fmt.Errorf("write subtitles: %w", err)
	}

	fmt.Println(successStyle.Render("✓ Wrote " + out))
	return nil
}

func refinedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".refined.srt"
}
