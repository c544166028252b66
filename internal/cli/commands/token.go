package commands

import (
	"fmt"
	"time"

	"elexon"
	"elexon/pkg"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the gateway and realtime service",
		Long: `Issue an HS256 bearer token signed with $JWT_SECRET.

The gateway expects it in the Authorization header, the realtime service in
the token query parameter.`,
		Example: `  $ elexon token --subject analyst --ttl 8h`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := pkg.GenerateToken(subject, role, elexon.GetConfig().JWTConfig.Secret, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().StringVar(&role, "role", "", "Token role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
