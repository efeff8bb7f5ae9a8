// Package cmd provides the branikbot CLI commands.
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"branikbot/internal/config"
	"branikbot/internal/logging"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	verbose bool
}

func NewRootCommand() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "branikbot",
		Short: "Answer money talk on Reddit in units of 2L Branik",
		Long: `branikbot scans subreddit comments for sums of money written the way
people actually write them (500kc, 1,5k, 3.000.000 Kč, 100,-) and replies with
how much discounted 2L Branik that buys.

Examples:
  branikbot parse "dal bych za to 1,5k"
  branikbot listen
  branikbot replies export --out ./out/replies.xlsx`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.LogLevel = "debug"
			}
			logger, err := logging.New(cfg)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newListenCmd(a))
	root.AddCommand(newParseCmd(a))
	root.AddCommand(newPriceCmd(a))
	root.AddCommand(newRepliesCmd(a))
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}
