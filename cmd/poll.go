package cmd

import (
	"fmt"

	"go-poll-scheduler/core/cache"
	"go-poll-scheduler/core/config"
	"go-poll-scheduler/modules/availability"
	"go-poll-scheduler/modules/poll/service"

	"github.com/spf13/cobra"
)

func newPollCommand() *cobra.Command {
	var (
		members       []string
		minimumLength string
		weeks         int
	)
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Poll members against the availability source and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Get()
			settings, err := service.SettingsFromConfig(cfg)
			if err != nil {
				return err
			}

			opts := service.Options{Weeks: weeks}
			if minimumLength != "" {
				if opts.MinimumLength, err = service.ParseMinimumLength(minimumLength); err != nil {
					return err
				}
			}

			store, err := cache.New(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := service.NewPollService(nil, availability.NewService(cfg, store), nil, settings)
			result, appErr := svc.Compute(cmd.Context(), members, opts)
			if appErr != nil {
				return appErr
			}
			for _, line := range svc.Render(result) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&members, "member", "m", nil, "member id to poll, repeatable")
	cmd.Flags().StringVarP(&minimumLength, "min", "t", "", "minimum session length as HH:MM")
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, "number of weeks to look ahead")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}
