package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sandevgo/vizchat/internal/config"
	"github.com/sandevgo/vizchat/pkg/env"
)

var envInitCmd = &cobra.Command{
	Use:   "env-init",
	Short: "Write the current configuration to the runtime .env file",
	Long:  `Collects the configuration from the current environment and writes it to <runtime>/.env so later runs pick it up without exported variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0o755); err != nil {
			return err
		}

		var content string
		for _, cfg := range []any{
			config.NewAppConfig(ctx),
			config.NewAnthropicConfig(ctx),
			config.NewAzureConfig(ctx),
			config.NewGatewayConfig(ctx),
		} {
			section, err := env.MarshalEnv(cfg)
			if err != nil {
				return err
			}
			content += section
		}

		envFile := filepath.Join(runtimePath, ".env")
		if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", envFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(envInitCmd)
}
