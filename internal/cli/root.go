package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rileyhilliard/tmux-wax/internal/config"
	"github.com/rileyhilliard/tmux-wax/internal/docker"
	"github.com/rileyhilliard/tmux-wax/internal/host"
	"github.com/rileyhilliard/tmux-wax/internal/logger"
	"github.com/rileyhilliard/tmux-wax/internal/status"
	"github.com/rileyhilliard/tmux-wax/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	tmuxFlag   bool
	configFlag string
)

// StatusOptions holds options for a status run.
type StatusOptions struct {
	Config string // Config file path (empty for ~/.tmux-wax-env)
	Tmux   bool   // Compact single-line output with tmux style tags
}

// pipeline builds the prober and collector for a run. Tests swap it out.
var pipeline = func() (status.Prober, status.Collector) {
	return host.NewProber(logger.NewEnvLogger("[probe]")),
		docker.NewCollector(logger.NewEnvLogger("[docker]"))
}

var rootCmd = &cobra.Command{
	Use:   "tmux-wax",
	Short: "Docker container counts from a remote host, for tmux",
	Long: `tmux-wax logs into a remote Docker host over SSH and prints how many
containers it has, how many are up, how many are down, and how many failed.

Connection details are read from ~/.tmux-wax-env (TOML):

  username = "wax"
  password = "secret"
  host = "nas.local"
  port = 22

Examples:
  tmux-wax
  tmux-wax --tmux
  set -g status-right '#(tmux-wax --tmux)'`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := statusCommand(cmd.OutOrStdout(), StatusOptions{
			Config: configFlag,
			Tmux:   tmuxFlag,
		})
		return err
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&tmuxFlag, "tmux", "t", false, "compact single-line output for the tmux status bar")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default is ~/.tmux-wax-env)")
}

// statusCommand loads the config and runs the probe/collect/render pipeline.
func statusCommand(out io.Writer, opts StatusOptions) (status.Outcome, error) {
	cfg, err := config.LoadDefault(opts.Config)
	if err != nil {
		return status.OutcomeFailed, err
	}

	prober, collector := pipeline()
	return status.Run(out, cfg.Target(), prober, collector, ui.ModeFor(opts.Tmux))
}

// Execute runs the root command. Any error is printed to stderr and the
// process exits with status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, ui.RenderError(err))
		os.Exit(1)
	}
}
