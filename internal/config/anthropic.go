package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/vizchat/pkg/log"
)

type AnthropicConfig struct {
	APIKey string `env:"ANTHROPIC_API_KEY"`
}

func NewAnthropicConfig(ctx context.Context) *AnthropicConfig {
	c := &AnthropicConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Anthropic config")
	}
	return c
}

func (c AnthropicConfig) Enabled() bool {
	return c.APIKey != ""
}
