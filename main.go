package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mori/config"
	"mori/mcp"
	"mori/model"
	"mori/provider"
	"mori/server"
	"mori/setup"
	"mori/storage"
	"mori/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "mori",
		Short:         "Chat with Mori Buntarou, a stoic climber, through a local Ollama",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "settings file (default "+config.GetSettingsFilePath()+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the chat page (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "setup",
			Short: "Check Ollama and pull the configured models",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSetup(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "chat",
			Short: "Chat in the terminal",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runChat(configPath)
			},
		},
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the knowledge tools over MCP stdio",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMCP(configPath)
			},
		},
	)

	return root
}

// app is everything a chat surface needs.
type app struct {
	cfg    *config.Config
	bot    *model.Chatbot
	ledger *storage.UsageLedger
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	config.InitDebugLog(cfg.DataDir())
	return cfg, nil
}

func newApp(path string) (*app, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}

	p, err := provider.InitializeProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	a := &app{cfg: cfg}
	botCfg := model.ChatbotConfigFrom(cfg)

	if cfg.UsageLog {
		a.ledger, err = storage.OpenUsageLedger(cfg.DataDir())
		if err != nil {
			return nil, fmt.Errorf("failed to open usage ledger: %w", err)
		}
		botCfg.Recorder = a.ledger
	}

	a.bot, err = model.NewChatbot(p, botCfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// usage returns the ledger as a server.UsageSource, or nil when disabled.
func (a *app) usage() server.UsageSource {
	if a.ledger == nil {
		return nil
	}
	return a.ledger
}

func (a *app) Close() {
	if a.ledger == nil {
		return
	}
	if err := a.ledger.Close(); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("Warning: failed to close usage ledger: %v", err)
	}
}

func runServe(ctx context.Context, path string) error {
	a, err := newApp(path)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.NewServer(server.OptionsFrom(a.cfg), a.bot, storage.NewSessionStore(), a.usage())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Mori is listening on http://%s\n", srv.Addr())
	return srv.Run(ctx)
}

func runSetup(ctx context.Context, path string) error {
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	_, err = setup.New(cfg).Run(ctx)
	if errors.Is(err, setup.ErrOllamaNotInstalled) || errors.Is(err, setup.ErrOllamaNotRunning) {
		os.Exit(1)
	}
	return err
}

func runChat(path string) error {
	a, err := newApp(path)
	if err != nil {
		return err
	}
	defer a.Close()

	return ui.Run(a.bot)
}

func runMCP(path string) error {
	a, err := newApp(path)
	if err != nil {
		return err
	}
	defer a.Close()

	return mcp.ServeStdio(a.bot)
}
