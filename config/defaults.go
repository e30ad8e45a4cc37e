package config

// DefaultModels is the selector allow-list; the first entry is the default.
var DefaultModels = []string{"llama3.2:1b", "mistral", "llama3", "phi3", "codellama"}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		DataDirectory: "~/.local/share/mori",
		UsageLog:      true,
		Server: ServerConfig{
			Listen:        "127.0.0.1:8501",
			AssetsDir:     ".",
			RatePerSecond: 2,
			RateBurst:     4,
		},
		Ollama: OllamaConfig{
			Provider:     "ollama",
			Host:         "http://localhost:11434",
			DefaultModel: DefaultModels[0],
			Models:       append([]string(nil), DefaultModels...),
		},
		Generation: GenerationConfig{
			Temperature: 0.7,
			TopP:        0.9,
			MaxTokens:   50,
		},
		Setup: SetupConfig{
			PullModels: []string{"mistral", "llama3"},
		},
	}
}

func GenerateUserConfigTemplate() string {
	return `# Mori Configuration
# Location: ~/.config/mori/settings.toml
# This file uses TOML format: https://toml.io

# Directory for the debug log and the usage ledger
data_directory = "~/.local/share/mori"

# Record per-turn metadata (model, timings, failures; never message text)
usage_log = true

[server]
# Address the chat page listens on
listen = "127.0.0.1:8501"

# Directory holding bg.jpeg and logo.png (both optional)
assets_dir = "."

# Chat requests allowed per second across all sessions (0 disables the limit)
rate_per_second = 2.0
rate_burst = 4

[ollama]
# "ollama" for a local Ollama server, "openai" for an OpenAI-compatible local server
provider = "ollama"
host = "http://localhost:11434"

# Models offered in the selector; default_model must be one of them
default_model = "llama3.2:1b"
models = ["llama3.2:1b", "mistral", "llama3", "phi3", "codellama"]

# 0 waits for the model however long it takes
timeout_seconds = 0

[generation]
temperature = 0.7
top_p = 0.9
max_tokens = 50

[persona]
# Append matching mountain knowledge to the persona prompt
knowledge_hints = false

[setup]
# Models fetched by "mori setup"
pull_models = ["mistral", "llama3"]
`
}
