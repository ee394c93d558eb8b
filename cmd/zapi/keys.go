package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adoptai/zapi/internal/provider"
	"github.com/adoptai/zapi/internal/vault"
)

var (
	keysOrgContext string
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Validate and encrypt BYOK provider keys",
}

var keysProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers with registered validation rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := provider.New()
		for _, name := range registry.Providers() {
			spec, _ := registry.Lookup(name)
			fmt.Printf("%-14s %s\n", name, spec.Tier)
		}
		return nil
	},
}

var keysValidateCmd = &cobra.Command{
	Use:   "validate <provider> <key>",
	Short: "Check a key against the provider's format rule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := provider.New().Validate(args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	},
}

var keysEncryptCmd = &cobra.Command{
	Use:   "encrypt <provider> <key>",
	Short: "Seal a key for an organization and print the record as JSON",
	Long: `Seal a key for an organization and print the record as JSON.

The master secret comes from configuration (vault.master_secret or
ZAPI_VAULT__MASTER_SECRET). The plaintext key never leaves the process.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if keysOrgContext == "" {
			return fmt.Errorf("--org is required")
		}

		v, err := vault.New(cfg.Vault.MasterSecret, nil,
			vault.WithIterations(cfg.Vault.Iterations))
		if err != nil {
			return err
		}

		record, err := v.Encrypt(args[0], args[1], keysOrgContext)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

func init() {
	keysEncryptCmd.Flags().StringVar(&keysOrgContext, "org", "", "organization context to seal under")

	keysCmd.AddCommand(keysProvidersCmd, keysValidateCmd, keysEncryptCmd)
	rootCmd.AddCommand(keysCmd)
}
