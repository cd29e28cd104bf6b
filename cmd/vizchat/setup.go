package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/vizchat/internal/config"
	"github.com/sandevgo/vizchat/internal/contexts"
	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/providers/ai"
	"github.com/sandevgo/vizchat/internal/service/chat"
	"github.com/sandevgo/vizchat/internal/service/command"
	"github.com/sandevgo/vizchat/internal/service/router"
	"github.com/sandevgo/vizchat/internal/service/workspace"
	"github.com/sandevgo/vizchat/internal/storage/sqlite"
	"github.com/sandevgo/vizchat/internal/transport/telegram"
	"github.com/sandevgo/vizchat/internal/transport/tui"
	"github.com/sandevgo/vizchat/internal/viz"
	"github.com/sandevgo/vizchat/pkg/log"
	"github.com/sandevgo/vizchat/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)

	// 2. Storage
	db, messagesRepo, selectionsRepo, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Context resources
	store := contexts.NewStore(appCfg.GetContextsPath())

	// 4. Provider adapters behind one router
	adapters := initAdapters(ctx, store)
	if len(adapters) == 0 {
		logger.Fatal().Msg("no provider configured, set ANTHROPIC_API_KEY or the Azure/Gateway credentials")
	}
	aiRouter := router.New(ctx, adapters...)

	// 5. Chat pipeline
	bus := workspace.NewBus()
	chatSvc := chat.New(aiRouter, viz.NewParser(), messagesRepo, selectionsRepo, bus, appCfg.GetHistoryTokenBudget())

	if err := chatSvc.RestoreSelections(ctx); err != nil {
		logger.Warn().Err(err).Msg("context preload failed, continuing")
	}

	cmdRouter := command.New(command.NewCommands(chatSvc))

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, chatSvc, cmdRouter, bus)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, core.MessagesRepository, core.SelectionsRepository, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, nil, err
	}
	return db, sqlite.NewMessagesRepo(db), sqlite.NewSelectionsRepo(db), nil
}

func initAdapters(ctx context.Context, store core.ContextStore) []core.AIService {
	var adapters []core.AIService

	if cfg := config.NewAnthropicConfig(ctx); cfg.Enabled() {
		adapters = append(adapters, ai.NewAnthropic(cfg.APIKey, store))
	}
	if cfg := config.NewAzureConfig(ctx); cfg.Enabled() {
		adapters = append(adapters, ai.NewAzure(ai.AzureConfig{
			Endpoint:     cfg.Endpoint,
			APIVersion:   cfg.APIVersion,
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			AppKey:       cfg.AppKey,
		}, store))
	}
	if cfg := config.NewGatewayConfig(ctx); cfg.Enabled() {
		adapters = append(adapters, ai.NewGateway(ai.GatewayConfig{
			BaseURL:      cfg.BaseURL,
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			AppKey:       cfg.AppKey,
		}, store))
	}

	return adapters
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	chatSvc *chat.Service,
	cmdRouter core.CmdRouter,
	bus *workspace.Bus,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, chatSvc, cmdRouter)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableTUI {
		services = append(services, tui.New(chatSvc, cmdRouter, bus, cfg.IsStreamingEnabled()))
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
