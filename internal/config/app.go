package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/vizchat/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"VIZCHAT_RUNTIME_PATH" envDefault:".vizchat"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableTUI      bool `env:"ENABLE_TUI" envDefault:"true"`

	// Streaming toggles chunked replies on transports that support it.
	EnableStreaming bool `env:"ENABLE_STREAMING" envDefault:"true"`

	// History Management
	HistoryTokenBudget int `env:"HISTORY_TOKEN_BUDGET" envDefault:"6000"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "vizchat.db")
}

func (c AppConfig) GetContextsPath() string {
	return filepath.Join(c.RuntimePath, "contexts")
}

func (c AppConfig) GetHistoryTokenBudget() int {
	return c.HistoryTokenBudget
}

func (c AppConfig) IsStreamingEnabled() bool {
	return c.EnableStreaming
}

func (c AppConfig) IsTelegramEnabled() bool {
	return c.EnableTelegram
}
