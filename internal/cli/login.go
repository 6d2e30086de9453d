package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	domainauth "github.com/alanyang/iobos/internal/domain/auth"
)

func newLoginCmd(opts *options) *cobra.Command {
	var req domainauth.LoginRequest

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange account credentials for a bearer token",
		Long:  "Logs in and prints the bearer token. Export it as IOBOS_TOKEN for later commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			token, err := opts.client().Login(ctx, req)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().StringVar(&req.InvitationCode, "invitation-code", "", "invitation code (8-12 uppercase letters or digits)")
	cmd.MarkFlagRequired("email")           //nolint:errcheck
	cmd.MarkFlagRequired("password")        //nolint:errcheck
	cmd.MarkFlagRequired("invitation-code") //nolint:errcheck

	return cmd
}
