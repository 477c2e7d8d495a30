package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "impactledger/internal/jwt_token"
	"impactledger/internal/platform/config"
	id "impactledger/pkg/domain"
)

func tokenCmd() *cobra.Command {
	var (
		account string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Long: `Mint an HS256 bearer token whose subject is --account, signed with the
configured JWT signing key. Defaults to the registry administrator.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if account == "" {
				account = cfg.Registry.Administrator
			}
			caller, err := id.ParseAccountID(account)
			if err != nil {
				return err
			}

			token, err := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer).GenerateToken(caller, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account to use as the token subject (default: administrator)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
