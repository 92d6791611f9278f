package main

import (
	"time"

	"github.com/medjourney/simulados-backend/internal/config"
	"github.com/medjourney/simulados-backend/internal/service"
	"github.com/spf13/cobra"
)

var (
	tokenName   string
	tokenExpiry time.Duration
)

// Local development only; production tokens come from the auth provider.
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a signed access token for local testing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		expiry := cfg.JWTExpiry
		if tokenExpiry > 0 {
			expiry = tokenExpiry
		}

		token, err := service.NewAuthService(cfg.JWTSecret, expiry).IssueToken(args[0], tokenName)
		if err != nil {
			return err
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Display name carried in the token")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 0, "Token lifetime (defaults to JWT_EXPIRY_HOURS)")
}
