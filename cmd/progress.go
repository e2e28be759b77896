package cmd

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/JakeFAU/sitemap-indexer/internal/indexer"
)

// progressObserver drives a terminal progress bar from run events.
type progressObserver struct {
	indexer.NopObserver
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressObserver(out io.Writer) *progressObserver {
	return &progressObserver{out: out}
}

// BatchStarted implements indexer.Observer.
func (p *progressObserver) BatchStarted(_ string, total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("submitting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Submitted implements indexer.Observer.
func (p *progressObserver) Submitted(string, string, error) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finished implements indexer.Observer.
func (p *progressObserver) Finished(indexer.Result) {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
