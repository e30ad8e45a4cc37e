package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{"MORI_OLLAMA_HOST", "MORI_MODEL", "MORI_DATA_DIR", "MORI_LISTEN", "MORI_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadCreatesTemplateOnFirstRun(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, FileExists(filepath.Join(home, ".config", "mori", "settings.toml")))
	assert.Equal(t, "http://localhost:11434", cfg.OllamaURL())
	assert.Equal(t, "llama3.2:1b", cfg.Model())
	assert.Equal(t, DefaultModels, cfg.Models)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 0.9, cfg.TopP)
	assert.Equal(t, 50, cfg.MaxTokens)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.True(t, cfg.UsageLog)
	assert.False(t, cfg.KnowledgeHints)
	assert.Equal(t, []string{"mistral", "llama3"}, cfg.PullModels)

	info, err := os.Stat(cfg.DataDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestTemplateMatchesDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(GenerateUserConfigTemplate()), 0600))

	fromFile, err := LoadUserConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultUserConfig(), fromFile)
}

func TestLoadReadsCustomSettings(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	content := `data_directory = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"
usage_log = false

[server]
listen = "0.0.0.0:9000"

[ollama]
host = "http://gpu-box:11434"
default_model = "phi3"
models = ["phi3", "mistral"]
timeout_seconds = 30

[persona]
knowledge_hints = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "http://gpu-box:11434", cfg.OllamaHost)
	assert.Equal(t, "phi3", cfg.DefaultModel)
	assert.Equal(t, []string{"phi3", "mistral"}, cfg.Models)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.UsageLog)
	assert.True(t, cfg.KnowledgeHints)
	assert.Equal(t, path, cfg.SettingsPath)
	assert.Equal(t, 0.7, cfg.Temperature, "missing generation section keeps defaults")
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "settings.toml")

	t.Setenv("MORI_OLLAMA_HOST", "http://other:11434")
	t.Setenv("MORI_MODEL", "mistral")
	t.Setenv("MORI_DATA_DIR", t.TempDir())
	t.Setenv("MORI_LISTEN", ":7000")
	t.Setenv("MORI_TIMEOUT_SECONDS", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://other:11434", cfg.OllamaHost)
	assert.Equal(t, "mistral", cfg.DefaultModel)
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, 12*time.Second, cfg.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "openai provider", mutate: func(c *Config) { c.Provider = "openai" }},
		{name: "unknown provider", mutate: func(c *Config) { c.Provider = "bedrock" }, wantErr: true},
		{name: "default model outside list", mutate: func(c *Config) { c.DefaultModel = "gemma" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromUserConfig(DefaultUserConfig())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	assert.Equal(t, filepath.Join(home, "mori"), ExpandPath("~/mori"))
	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Clean("/tmp/a/b"), ExpandPath("/tmp/a/../a/b"))
}
