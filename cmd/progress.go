package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"myansub/internal/progress"
)

const barWidth = 30

var (
	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	stepStyle      = lipgloss.NewStyle().Bold(true).Width(12)
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func renderBar(pct int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * barWidth / 100
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

func renderStatus(status progress.Status) string {
	line := fmt.Sprintf("%s %s %3d%%  %s",
		stepStyle.Render(status.Step.String()),
		renderBar(status.Progress),
		status.Progress,
		status.Message,
	)

	switch status.Step {
	case progress.StepCompleted:
		return doneStyle.Render("✓ ") + line
	case progress.StepError:
		return failStyle.Render("✗ ") + line
	default:
		return "  " + line
	}
}

// watchProgress prints every status change of tracker until the returned stop
// function is called.
func watchProgress(tracker *progress.Tracker) (stop func()) {
	events, unsubscribe := tracker.Subscribe(32)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for event := range events {
			fmt.Println(renderStatus(event.Status))
		}
	}()

	return func() {
		unsubscribe()
		<-done
	}
}
