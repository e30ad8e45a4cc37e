package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LoadUserConfig decodes the settings file, writing the commented template
// first when it does not exist yet.
func LoadUserConfig(path string) (*UserConfig, error) {
	if !FileExists(path) {
		if err := CreateDefaultUserConfig(path); err != nil {
			return nil, fmt.Errorf("failed to create user config: %w", err)
		}
		return DefaultUserConfig(), nil
	}

	cfg := DefaultUserConfig()
	// Lists are replaced, not merged, when present in the file
	cfg.Ollama.Models = nil
	cfg.Setup.PullModels = nil

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return cfg, nil
}

func SaveUserConfig(cfg *UserConfig, path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create user config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}

	return nil
}

func CreateDefaultUserConfig(path string) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if FileExists(path) {
		return nil
	}

	content := GenerateUserConfigTemplate()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}
