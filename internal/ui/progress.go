package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/desertthunder/spotify-backup/internal/tasks"
)

// Progress shows library fetch updates as a spinner with a description line.
//
// Degraded playlists are printed as warning lines above the spinner.
type Progress struct {
	bar     *progressbar.ProgressBar
	out     io.Writer
	palette *Palette
	seen    int
}

// NewProgress creates a spinner writing to w. When visible is false only warnings are written.
func NewProgress(w io.Writer, visible bool) *Progress {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionSetDescription("Starting..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	return &Progress{bar: bar, out: w, palette: styles}
}

// Handle applies a single update.
func (p *Progress) Handle(update tasks.ProgressUpdate) {
	p.seen++

	if update.Phase == tasks.PlaylistDegraded {
		p.bar.Clear()
		fmt.Fprintln(p.out, p.palette.Warn(update.Message))
	}

	p.bar.Describe(update.Message)
	p.bar.Add(1)
}

// Consume reads updates until the channel is closed, then clears the spinner.
func (p *Progress) Consume(updates <-chan tasks.ProgressUpdate) {
	for update := range updates {
		p.Handle(update)
	}
	p.bar.Finish()
}

// Seen returns the number of updates handled.
func (p *Progress) Seen() int {
	return p.seen
}
