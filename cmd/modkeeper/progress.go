package modkeeper

import (
	"io"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/modkeeper/pkg/logging"
	"github.com/arthur-debert/modkeeper/pkg/types"
)

const progressSteps = 100

// progress drives a pterm bar from a ProgressFunc. Off a terminal it logs
// step descriptions instead.
type progress struct {
	bar  *pterm.ProgressbarPrinter
	last string
}

func (a *app) startProgress(w io.Writer, title string) *progress {
	p := &progress{}
	if !a.interactive {
		return p
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(progressSteps).
		WithTitle(title).
		WithWriter(w).
		WithRemoveWhenDone(true).
		Start()
	if err == nil {
		p.bar = bar
	}
	return p
}

// Func returns the callback handed to long operations.
func (p *progress) Func() types.ProgressFunc {
	logger := logging.GetLogger("cli.progress")
	return func(fraction float64, description string) {
		if description != "" && description != p.last {
			p.last = description
			logger.Info().Float64("fraction", fraction).Msg(description)
		}
		if p.bar == nil {
			return
		}
		target := int(fraction * progressSteps)
		if target > progressSteps {
			target = progressSteps
		}
		if delta := target - p.bar.Current; delta > 0 {
			p.bar.Add(delta)
		}
		if description != "" {
			p.bar.UpdateTitle(description)
		}
	}
}

// Stop removes the bar.
func (p *progress) Stop() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
