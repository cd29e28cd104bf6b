package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/vizchat/pkg/log"
)

type GatewayConfig struct {
	BaseURL      string `env:"GATEWAY_BASE_URL"`
	TokenURL     string `env:"GATEWAY_TOKEN_URL"`
	ClientID     string `env:"GATEWAY_CLIENT_ID"`
	ClientSecret string `env:"GATEWAY_CLIENT_SECRET"`
	AppKey       string `env:"GATEWAY_APP_KEY"`
}

func NewGatewayConfig(ctx context.Context) *GatewayConfig {
	c := &GatewayConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gateway config")
	}
	return c
}

func (c GatewayConfig) Enabled() bool {
	return c.BaseURL != "" && c.ClientID != "" && c.ClientSecret != ""
}
