package cli

import (
	"fmt"

	"github.com/Hrishikeshgupta2002/AI-Council/config"
	"github.com/Hrishikeshgupta2002/AI-Council/model"
	"github.com/Hrishikeshgupta2002/AI-Council/model/anthropic"
	"github.com/Hrishikeshgupta2002/AI-Council/model/openai"
)

// GatewayFactory builds the inference gateway for a configuration.
type GatewayFactory func(cfg *config.Config) (model.Model, error)

// newGateway registers one adapter per provider the configuration uses. The
// model id travels on every request, so one adapter serves all agents of a
// provider.
func newGateway(cfg *config.Config) (model.Model, error) {
	router := model.NewRouter(cfg.Gateway.Provider)

	for _, provider := range cfg.Providers() {
		switch provider {
		case openai.ProviderOllama:
			router.Register(provider, openai.NewOllamaModel(cfg.Gateway.BaseURL))
		case openai.ProviderOpenAI:
			if cfg.Gateway.OpenAIAPIKey == "" {
				return nil, fmt.Errorf("provider %s requires an API key (OPENAI_API_KEY)", provider)
			}
			router.Register(provider, openai.NewModel(func(o *openai.Options) {
				o.APIKey = cfg.Gateway.OpenAIAPIKey
			}))
		case anthropic.Provider:
			if cfg.Gateway.AnthropicAPIKey == "" {
				return nil, fmt.Errorf("provider %s requires an API key (ANTHROPIC_API_KEY)", provider)
			}
			router.Register(provider, anthropic.NewModel(func(o *anthropic.Options) {
				o.APIKey = cfg.Gateway.AnthropicAPIKey
			}))
		default:
			return nil, fmt.Errorf("unsupported provider %q", provider)
		}
	}

	return router, nil
}

// describeGateway is shown in the session header.
func describeGateway(cfg *config.Config) string {
	if cfg.Gateway.Provider == openai.ProviderOllama {
		return cfg.Gateway.BaseURL + " (ollama)"
	}
	return cfg.Gateway.Provider
}
