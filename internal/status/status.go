// Package status wires the probe, the collector and the renderers into a
// single run: probe the host, and either report it down or collect and
// report the container tally.
package status

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/tmux-wax/internal/docker"
	"github.com/rileyhilliard/tmux-wax/internal/ui"
	"github.com/rileyhilliard/tmux-wax/pkg/sshutil"
)

// Prober can tell whether a host answers SSH at all.
type Prober interface {
	Reachable(target sshutil.Target) bool
}

// Collector can gather a container tally from a host.
type Collector interface {
	Collect(target sshutil.Target) (docker.Tally, error)
}

// Outcome is how a run ended.
type Outcome int

const (
	// OutcomeFailed means nothing was written; the error says why.
	OutcomeFailed Outcome = iota
	// OutcomeReported means the tally was written.
	OutcomeReported
	// OutcomeDown means the host was unreachable and the down message was written.
	OutcomeDown
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReported:
		return "reported"
	case OutcomeDown:
		return "down"
	default:
		return "failed"
	}
}

// Run probes target once. If it is unreachable the down message for mode is
// written and Run returns OutcomeDown with a nil error. Otherwise the tally
// is collected and written. Collection errors are returned as-is and
// nothing is written.
func Run(w io.Writer, target sshutil.Target, prober Prober, collector Collector, mode ui.Mode) (Outcome, error) {
	if !prober.Reachable(target) {
		if _, err := fmt.Fprintln(w, ui.RenderDown(mode)); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeDown, nil
	}

	tally, err := collector.Collect(target)
	if err != nil {
		return OutcomeFailed, err
	}

	if _, err := fmt.Fprintln(w, ui.Render(tally, mode)); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeReported, nil
}
