package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-poll-scheduler/core/config"
	"go-poll-scheduler/core/logger"

	"github.com/spf13/cobra"
)

// Execute runs the root command and exits on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "poll-scheduler",
		Short:         "Find the next session every member of a group can attend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Init(configPath)
			if err != nil {
				return err
			}
			return logger.Init(cfg.Server.Env, cfg.Server.LogLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (default ./config.yaml when present)")

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newWorkerCommand())
	cmd.AddCommand(newPollCommand())
	cmd.AddCommand(newIntersectCommand())
	cmd.AddCommand(newTokenCommand())
	return cmd
}
