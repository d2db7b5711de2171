package cmd

import (
	"fmt"

	"go-poll-scheduler/core/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var user string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for the private API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID := uuid.New()
			if user != "" {
				parsed, err := uuid.Parse(user)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				userID = parsed
			}
			token, err := utils.GenerateToken(userID, utils.ScopeTokenAccess)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id to embed, random when empty")
	return cmd
}
