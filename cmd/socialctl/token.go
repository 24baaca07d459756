package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telecomnet/telecom-social/internal/auth"
)

func newDevTokenCmd(a *app) *cobra.Command {
	var userID, secret, issuer string
	var admin bool
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "dev-token",
		Short: "Print a bearer token for a user",
		Long: "Without --secret prints a dev-mode token. With --secret signs an HS256 JWT\n" +
			"that a service running with SOCIAL_AUTH_MODE=jwt accepts.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				_, err := fmt.Fprintln(a.out, auth.DevToken(userID, admin))
				return err
			}
			token, err := auth.NewJWTAuthenticator(secret, issuer).Sign(userID, admin, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, err = fmt.Fprintln(a.out, token)
			return err
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin role")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (SOCIAL_JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "telecom-social", "Token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
