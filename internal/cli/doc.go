// Package cli implements the tmux-wax command-line interface.
//
// The root command does the whole job: load the config, probe the host,
// and print the container tally (or the down message) once. With --tmux
// the output is a single line with tmux style tags, suitable for
// status-right; without it the output is a multi-line block for a terminal.
//
//	tmux-wax                 - verbose block
//	tmux-wax --tmux          - compact status line
//	tmux-wax --config PATH   - read a config other than ~/.tmux-wax-env
//	tmux-wax version         - build information
//	tmux-wax completion SHELL
//
// Failures are printed to stderr and exit 1. An unreachable host is not a
// failure: the down message goes to stdout and the exit status is 0.
package cli
