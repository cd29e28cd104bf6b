package ai

import (
	"fmt"
	"net/url"

	"github.com/sandevgo/vizchat/internal/core"
)

// AzureConfig configures an Azure OpenAI deployment. Model ids double
// as deployment names.
type AzureConfig struct {
	Endpoint     string
	APIVersion   string
	TokenURL     string
	ClientID     string
	ClientSecret string
	AppKey       string
}

func NewAzure(cfg AzureConfig, store core.ContextStore) *OpenAICompatible {
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-02-01"
	}
	return NewOpenAICompatible(OpenAICompatibleConfig{
		Provider: "azure",
		BaseURL:  cfg.Endpoint,
		PathFor: func(model string) string {
			return fmt.Sprintf("/openai/deployments/%s/chat/completions?api-version=%s",
				url.PathEscape(model), url.QueryEscape(apiVersion))
		},
		AppKey:       cfg.AppKey,
		TokenURL:     cfg.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Models: []core.ModelOption{
			{ID: "gpt-4o", Name: "GPT-4o (Azure)", Description: "Azure-hosted GPT-4o deployment"},
			{ID: "gpt-4", Name: "GPT-4 (Azure)", Description: "Azure-hosted GPT-4 deployment"},
			{ID: "gpt-35-turbo", Name: "GPT-3.5 Turbo (Azure)", Description: "Azure-hosted GPT-3.5 deployment"},
		},
	}, store)
}
