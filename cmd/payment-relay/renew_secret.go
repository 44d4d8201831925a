package main

import (
	"context"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/app/setup"
	"github.com/spf13/cobra"
)

var renewAccount string

var renewSecretCmd = &cobra.Command{
	Use:   "renew-secret",
	Short: "Force a secret renewal for one merchant account",
	Long: `Force a secret renewal against the gateway and store the new secret.

Examples:
  payment-relay renew-secret
  payment-relay renew-secret --account ACC_AIRTEL`,
	RunE: runRenewSecret,
}

func init() {
	renewSecretCmd.Flags().StringVarP(&renewAccount, "account", "a", "", "operation account code (defaults to the test route account)")
}

func runRenewSecret(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.MyPVIT.Timeout+10*time.Second)
	defer cancel()

	deps, err := setup.InitializeDependencies(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()
	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return err
	}

	account := renewAccount
	if account == "" {
		account = cfg.DefaultAccount()
	}
	secret, err := ucs.SecretUsecase.RenewSecret(ctx, account)
	if err != nil {
		return fmt.Errorf("renew secret for %s: %w", account, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "secret renewed for %s, expires at %s\n", account, secret.ExpirationAt.Format(time.RFC3339))
	return nil
}
