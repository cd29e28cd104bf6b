package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandevgo/vizchat/internal/config"
	"github.com/sandevgo/vizchat/internal/contexts"
	"github.com/sandevgo/vizchat/internal/service/router"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models every configured provider offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		store := contexts.NewStore(appCfg.GetContextsPath())

		adapters := initAdapters(ctx, store)
		if len(adapters) == 0 {
			return fmt.Errorf("no provider configured")
		}

		r := router.New(ctx, adapters...)
		for _, m := range r.AvailableModels() {
			fmt.Printf("%-28s %-24s %s\n", m.ID, m.Name, m.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
