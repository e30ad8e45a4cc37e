package provider

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"mori/config"
	"mori/model"
	"mori/ollama"
)

// PingProviderMsg is sent when a provider ping completes.
type PingProviderMsg struct {
	Valid   bool
	Missing []string
	Err     error
}

// PingProvider checks the provider from a bubbletea program and reports
// which of the wanted models are not available yet.
func PingProvider(p model.Provider, wanted []string) tea.Cmd {
	return func() tea.Msg {
		missing, err := CheckModels(context.Background(), p, wanted)
		if err != nil {
			return PingProviderMsg{Valid: false, Err: fmt.Errorf("connection failed: %w", err)}
		}

		if config.Debug {
			config.DebugLog.Printf("[Provider] Ping successful, %d of %d models missing", len(missing), len(wanted))
		}
		return PingProviderMsg{Valid: true, Missing: missing}
	}
}

// CheckModels lists the provider's models and returns the wanted names it
// does not have, in the order given. A bare name matches its ":latest" tag.
func CheckModels(ctx context.Context, p model.Provider, wanted []string) ([]string, error) {
	models, err := p.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range wanted {
		found := false
		for _, m := range models {
			if ollama.SameModel(m.Name, name) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
