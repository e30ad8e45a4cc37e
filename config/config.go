package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type ServerConfig struct {
	Listen        string  `toml:"listen"`
	AssetsDir     string  `toml:"assets_dir"`
	RatePerSecond float64 `toml:"rate_per_second"`
	RateBurst     int     `toml:"rate_burst"`
}

type OllamaConfig struct {
	Provider       string   `toml:"provider"`
	Host           string   `toml:"host"`
	APIKey         string   `toml:"api_key,omitempty"`
	DefaultModel   string   `toml:"default_model"`
	Models         []string `toml:"models"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type GenerationConfig struct {
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
	MaxTokens   int     `toml:"max_tokens"`
}

type PersonaConfig struct {
	KnowledgeHints bool `toml:"knowledge_hints"`
}

type SetupConfig struct {
	PullModels []string `toml:"pull_models"`
}

type UserConfig struct {
	DataDirectory string           `toml:"data_directory"`
	UsageLog      bool             `toml:"usage_log"`
	Server        ServerConfig     `toml:"server"`
	Ollama        OllamaConfig     `toml:"ollama"`
	Generation    GenerationConfig `toml:"generation"`
	Persona       PersonaConfig    `toml:"persona"`
	Setup         SetupConfig      `toml:"setup"`
}

// Config is the flattened runtime configuration handed to every component.
type Config struct {
	DataDirectory  string
	SettingsPath   string
	UsageLog       bool
	Listen         string
	AssetsDir      string
	RatePerSecond  float64
	RateBurst      int
	Provider       string
	OllamaHost     string
	APIKey         string
	DefaultModel   string
	Models         []string
	Timeout        time.Duration
	Temperature    float64
	TopP           float64
	MaxTokens      int
	KnowledgeHints bool
	PullModels     []string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) OllamaURL() string {
	return c.OllamaHost
}

func (c *Config) Model() string {
	return c.DefaultModel
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) UsageDBPath() string {
	return filepath.Join(c.DataDir(), "usage.db")
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("MORI_OLLAMA_HOST"); host != "" {
		c.OllamaHost = host
	}
	if model := os.Getenv("MORI_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if dataDir := os.Getenv("MORI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if listen := os.Getenv("MORI_LISTEN"); listen != "" {
		c.Listen = listen
	}
	if timeout := os.Getenv("MORI_TIMEOUT_SECONDS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs >= 0 {
			c.Timeout = time.Duration(secs) * time.Second
		}
	}
}

func CheckDebug() bool {
	debug := os.Getenv("MORI_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log carries prompts and model errors
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (MORI_DEBUG=%s) ===", os.Getenv("MORI_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load reads the settings file at path (the default location when empty),
// creating it from the template on first run, then applies MORI_* overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetSettingsFilePath()
	}

	userCfg, err := LoadUserConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	cfg := FromUserConfig(userCfg)
	cfg.SettingsPath = path
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	return cfg, nil
}

// FromUserConfig flattens the on-disk layout, filling gaps with defaults.
func FromUserConfig(u *UserConfig) *Config {
	def := DefaultUserConfig()

	cfg := &Config{
		DataDirectory:  orString(u.DataDirectory, def.DataDirectory),
		UsageLog:       u.UsageLog,
		Listen:         orString(u.Server.Listen, def.Server.Listen),
		AssetsDir:      orString(u.Server.AssetsDir, def.Server.AssetsDir),
		RatePerSecond:  u.Server.RatePerSecond,
		RateBurst:      u.Server.RateBurst,
		Provider:       orString(u.Ollama.Provider, def.Ollama.Provider),
		OllamaHost:     orString(u.Ollama.Host, def.Ollama.Host),
		APIKey:         u.Ollama.APIKey,
		DefaultModel:   orString(u.Ollama.DefaultModel, def.Ollama.DefaultModel),
		Models:         u.Ollama.Models,
		Timeout:        time.Duration(u.Ollama.TimeoutSeconds) * time.Second,
		Temperature:    u.Generation.Temperature,
		TopP:           u.Generation.TopP,
		MaxTokens:      u.Generation.MaxTokens,
		KnowledgeHints: u.Persona.KnowledgeHints,
		PullModels:     u.Setup.PullModels,
	}

	if len(cfg.Models) == 0 {
		cfg.Models = def.Ollama.Models
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Generation.Temperature
	}
	if cfg.TopP <= 0 {
		cfg.TopP = def.Generation.TopP
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.Generation.MaxTokens
	}
	if len(cfg.PullModels) == 0 {
		cfg.PullModels = def.Setup.PullModels
	}

	return cfg
}

// Validate rejects settings that would leave the chat page unusable.
func (c *Config) Validate() error {
	switch c.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown provider %q: must be ollama or openai", c.Provider)
	}

	for _, m := range c.Models {
		if m == c.DefaultModel {
			return nil
		}
	}
	return fmt.Errorf("default model %q is not in the model list", c.DefaultModel)
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
