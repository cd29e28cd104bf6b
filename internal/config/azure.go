package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/sandevgo/vizchat/pkg/log"
)

type AzureConfig struct {
	Endpoint     string `env:"AZURE_OPENAI_ENDPOINT"`
	APIVersion   string `env:"AZURE_OPENAI_API_VERSION" envDefault:"2024-02-01"`
	TokenURL     string `env:"AZURE_OPENAI_TOKEN_URL"`
	ClientID     string `env:"AZURE_OPENAI_CLIENT_ID"`
	ClientSecret string `env:"AZURE_OPENAI_CLIENT_SECRET"`
	AppKey       string `env:"AZURE_OPENAI_APP_KEY"`
}

func NewAzureConfig(ctx context.Context) *AzureConfig {
	c := &AzureConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Azure config")
	}
	return c
}

func (c AzureConfig) Enabled() bool {
	return c.Endpoint != "" && c.ClientID != "" && c.ClientSecret != ""
}
