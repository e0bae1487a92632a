package ui

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/tmux-wax/internal/docker"
)

// Mode selects how a status is rendered.
type Mode int

const (
	// ModeVerbose is a multi-line block for shell prompts, styled with raw
	// ANSI escapes.
	ModeVerbose Mode = iota
	// ModeCompact is a single line for the tmux status bar, styled with
	// tmux #[...] directives.
	ModeCompact
)

// ModeFor maps the --tmux flag to a Mode.
func ModeFor(compact bool) Mode {
	if compact {
		return ModeCompact
	}
	return ModeVerbose
}

func (m Mode) String() string {
	if m == ModeCompact {
		return "compact"
	}
	return "verbose"
}

// DownMessage is shown instead of counts when the host can't be reached.
const DownMessage = "Docker host unreachable"

// VerboseTitle heads the verbose block.
const VerboseTitle = "Docker Containers:"

// RenderCompact renders a tally for the tmux status bar:
//
//	🐳 T:10 U:5 D:3 #[fg=red,bold]F:2#[default]
func RenderCompact(t docker.Tally) string {
	return fmt.Sprintf("%s T:%d U:%d D:%d %s",
		SymbolWhale, t.Total, t.Up, t.Down, tmuxStyle(fmt.Sprintf("F:%d", t.Failed)))
}

// RenderVerbose renders a tally as a plain block for a shell prompt:
//
//	Docker Containers:
//	Total: 10
//	Up: 5
//	Down: 3
//	Failed: 2
func RenderVerbose(t docker.Tally) string {
	var b strings.Builder
	b.WriteString(VerboseTitle + "\n")
	fmt.Fprintf(&b, "Total: %d\n", t.Total)
	fmt.Fprintf(&b, "Up: %d\n", t.Up)
	fmt.Fprintf(&b, "Down: %d\n", t.Down)
	fmt.Fprintf(&b, "Failed: %d", t.Failed)
	return b.String()
}

// Render dispatches on mode.
func Render(t docker.Tally, mode Mode) string {
	if mode == ModeCompact {
		return RenderCompact(t)
	}
	return RenderVerbose(t)
}

// RenderDown renders the unreachable alert for mode. Verbose wraps it in a
// bold red escape sequence and reset.
func RenderDown(mode Mode) string {
	if mode == ModeCompact {
		return SymbolWhale + " " + tmuxStyle(DownMessage)
	}
	return ansiStyle(DownMessage)
}

func tmuxStyle(s string) string {
	return tmuxAlert + s + tmuxReset
}

// ansiStyle wraps s in a bold red SGR sequence followed by a reset.
func ansiStyle(s string) string {
	return statusProfile.String(s).Foreground(alertColor).Bold().String()
}
