package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/deckgen-api/internal/service/auth"
)

// tokenCmd mints a bearer token signed with the configured secret. Real
// tokens come from the identity service; this is for local testing.
func tokenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "token <principal-id>",
		Short: "Mint a development access token for a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := auth.NewJWTService(e.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}
			token, err := svc.GenerateToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
