package document

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

const progressDescription = "Processing files"

// ProgressReporter is advanced once per emitted file section.
type ProgressReporter interface {
	Add(delta int) error
	Finish() error
}

type silentProgress struct{}

func (silentProgress) Add(int) error { return nil }
func (silentProgress) Finish() error { return nil }

// NewTerminalProgress returns a progress bar on stderr when stderr is a terminal,
// and a silent reporter otherwise.
func NewTerminalProgress(total int) ProgressReporter {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return silentProgress{}
	}
	return NewProgressBar(total, os.Stderr)
}

// NewProgressBar renders progress for total files to writer.
func NewProgressBar(total int, writer io.Writer) ProgressReporter {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetDescription(progressDescription),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("file"),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(0),
		progressbar.OptionClearOnFinish(),
	)
}
