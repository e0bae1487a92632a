// Package ui renders container tallies and diagnostics for the terminal.
//
// Two output modes exist. Compact mode is one line for the tmux status bar
// and uses tmux's own #[fg=...] directives, which tmux interprets when it
// draws the status line. Verbose mode is a block for a shell prompt and
// uses raw ANSI escapes. Both close every style they open.
//
//	🐳 T:10 U:5 D:3 #[fg=red,bold]F:2#[default]
//
//	Docker Containers:
//	Total: 10
//	Up: 5
//	Down: 3
//	\x1b[31;1mFailed: 2\x1b[0m
//
// Status renderers are pure: equal tallies give byte-identical strings
// regardless of the terminal. Diagnostics (RenderError) go to stderr through
// Lip Gloss and adapt to the terminal instead.
package ui
