package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorError highlights diagnostics on stderr. Lip Gloss downsamples it to
// whatever the terminal supports and drops it when stderr isn't a TTY.
const ColorError lipgloss.Color = "1" // Red

// Status output is not adaptive: the same tally must always produce the
// same bytes, so verbose styling is pinned to the 16-color ANSI profile.
var statusProfile = termenv.ANSI

// alertColor marks the failed counter and the down message.
var alertColor = termenv.ANSIRed

// tmux inline style directives for compact output. tmuxReset restores the
// status-line defaults so the alert doesn't bleed into the next segment.
const (
	tmuxAlert = "#[fg=red,bold]"
	tmuxReset = "#[default]"
)
