package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"spreadgen/internal/spread"
)

const progressScale = 1000

type progressReporter struct {
	out      io.Writer
	bar      *progressbar.ProgressBar
	reported []bool
	title    string
}

func newProgressReporter(out io.Writer, live bool) *progressReporter {
	r := &progressReporter{out: out}
	if live {
		r.bar = progressbar.NewOptions(progressScale,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Starting"),
		)
	}
	return r
}

func (r *progressReporter) update(queue *spread.Queue) {
	statuses := queue.Snapshot()
	if r.reported == nil {
		r.reported = make([]bool, len(statuses))
	}

	if r.bar != nil {
		for _, status := range statuses {
			if status.State == spread.StateRunning && status.Title != r.title {
				r.title = status.Title
				r.bar.Describe(fmt.Sprintf("[%d/%d] %s", status.Index+1, len(statuses), status.Title))
			}
		}
		_ = r.bar.Set(int(queue.Overall() * progressScale))
		return
	}

	for i, status := range statuses {
		if r.reported[i] {
			continue
		}
		switch status.State {
		case spread.StateDone:
			fmt.Fprintf(r.out, "[%d/%d] %s (%s)\n", i+1, len(statuses), status.Title, formatDuration(status.Elapsed()))
			r.reported[i] = true
		case spread.StateFailed:
			fmt.Fprintf(r.out, "[%d/%d] %s failed\n", i+1, len(statuses), status.Title)
			r.reported[i] = true
		}
	}
}

func (r *progressReporter) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
