package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adoptai/zapi/pkg/zapi"
)

var (
	uploadClientID string
	uploadSecret   string
	uploadEnvKeys  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <capture.har>",
	Short: "Send a capture to the discovery service",
	Long: `Send a capture to the discovery service.

Client credentials come from --client-id/--secret or from the
ZAPI_CLIENT_ID and ZAPI_CLIENT_SECRET environment variables. With
--keys-from-env, provider API keys found in the environment are
encrypted and attached as BYOK metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		clientID := uploadClientID
		if clientID == "" {
			clientID = os.Getenv("ZAPI_CLIENT_ID")
		}
		secret := uploadSecret
		if secret == "" {
			secret = os.Getenv("ZAPI_CLIENT_SECRET")
		}

		client, err := zapi.NewClient(ctx, clientID, secret, zapi.WithClientConfig(cfg))
		if err != nil {
			return err
		}
		logger.Info("authenticated", "org_id", client.OrgID())

		if uploadEnvKeys {
			keys := zapi.CredentialsFromEnv()
			if len(keys) > 0 {
				if err := client.SetLLMKeys(keys); err != nil {
					return err
				}
				logger.Info("credentials sealed", "providers", client.LLMProviders())
			}
		}

		resp, err := client.UploadHAR(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(string(resp))
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadClientID, "client-id", "", "connect client ID")
	uploadCmd.Flags().StringVar(&uploadSecret, "secret", "", "connect client secret")
	uploadCmd.Flags().BoolVar(&uploadEnvKeys, "keys-from-env", false, "attach BYOK keys found in the environment")

	rootCmd.AddCommand(uploadCmd)
}
