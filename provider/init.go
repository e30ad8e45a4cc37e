package provider

import (
	"mori/config"
	"mori/model"
)

// InitializeProvider creates the provider selected in the application
// settings.
//
// The provider package owns the provider lifecycle, so this logic lives here,
// not in config or main. Construction never contacts the server; an
// unreachable Ollama is reported later by Ping or by the first Chat.
func InitializeProvider(cfg *config.Config) (model.Provider, error) {
	providerType := MapProviderIDToType(cfg.Provider)

	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.OllamaURL(),
		Model:   cfg.Model(),
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Provider] Provider %s creation failed: %v", cfg.Provider, err)
		}
		return nil, err
	}

	if config.Debug {
		config.DebugLog.Printf("[Provider] Initialized provider: %s (type: %s) at %s", cfg.Provider, providerType, cfg.OllamaURL())
	}
	return p, nil
}
