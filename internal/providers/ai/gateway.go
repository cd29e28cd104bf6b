package ai

import "github.com/sandevgo/vizchat/internal/core"

// GatewayConfig configures the enterprise chat gateway, an OpenAI
// compatible endpoint behind the same OAuth2 token service.
type GatewayConfig struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	AppKey       string
}

func NewGateway(cfg GatewayConfig, store core.ContextStore) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Provider: "gateway",
		BaseURL:  cfg.BaseURL,
		PathFor: func(string) string {
			return "/v1/chat/completions"
		},
		AppKey:       cfg.AppKey,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Models: []core.ModelOption{
			{ID: "gpt-4o-mini", Name: "GPT-4o mini (Gateway)", Description: "Gateway-hosted GPT-4o mini"},
			{ID: "gpt-4.1", Name: "GPT-4.1 (Gateway)", Description: "Gateway-hosted GPT-4.1"},
		},
	}, store)
}
