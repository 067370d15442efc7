package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"lipi/internal/annotate"
	"lipi/internal/ui"
)

type annotateOutcome struct {
	stats annotate.Stats
	err   error
}

// runAnnotateWithUI drives work in a goroutine while Bubble Tea owns
// the terminal; events flow from the annotator into the progress model.
func runAnnotateWithUI(title string, files []string, work func(annotate.EventSink) (annotate.Stats, error)) (annotate.Stats, error) {
	events := make(chan annotate.Event, 256)
	outcomeCh := make(chan annotateOutcome, 1)

	go func() {
		stats, err := work(annotate.ChannelSink{Ch: events})
		outcomeCh <- annotateOutcome{stats: stats, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.stats, uiErr
	}
	return outcome.stats, outcome.err
}
