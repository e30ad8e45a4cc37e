// Package setup prepares a machine to run Mori: it makes sure the settings
// and data directory exist, checks that Ollama is installed and running,
// and pulls the configured models.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mori/config"
)

// InstallURL is where Ollama is downloaded from.
const InstallURL = "https://ollama.ai/"

var (
	ErrOllamaNotInstalled = errors.New("ollama is not installed")
	ErrOllamaNotRunning   = errors.New("ollama is not running")
)

// Runner runs external commands. ExecRunner is the real one; tests swap in
// a fake.
type Runner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (ExecRunner) Run(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Result lists what happened to each model.
type Result struct {
	Pulled []string
	Failed []string
}

// Setup walks through the steps, printing progress to Out.
type Setup struct {
	Config *config.Config
	Runner Runner
	Out    io.Writer
}

func New(cfg *config.Config) *Setup {
	return &Setup{Config: cfg, Runner: ExecRunner{}, Out: os.Stdout}
}

// Run performs every step. It returns ErrOllamaNotInstalled or
// ErrOllamaNotRunning when Ollama is missing; model pull failures are
// reported in the Result, not as an error.
func (s *Setup) Run(ctx context.Context) (Result, error) {
	var res Result

	fmt.Fprintln(s.Out, "Setting up Mori Buntarou Mountain Chatbot")
	fmt.Fprintln(s.Out, strings.Repeat("=", 50))

	if err := s.prepare(); err != nil {
		return res, err
	}

	if err := s.CheckOllama(ctx); err != nil {
		fmt.Fprintln(s.Out)
		fmt.Fprintln(s.Out, "Please install and start Ollama first:")
		fmt.Fprintf(s.Out, "1. Download from %s\n", InstallURL)
		fmt.Fprintln(s.Out, "2. Install and start the service (ollama serve)")
		fmt.Fprintln(s.Out, "3. Run mori setup again")
		return res, err
	}

	res = s.PullModels(ctx)

	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "Setup complete.")
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "To start the chatbot:")
	fmt.Fprintln(s.Out, "  mori serve")
	fmt.Fprintf(s.Out, "then open http://%s\n", s.Config.Listen)
	fmt.Fprintln(s.Out)
	fmt.Fprintln(s.Out, "The mountain awaits your questions...")

	return res, nil
}

func (s *Setup) prepare() error {
	fmt.Fprintln(s.Out, "Preparing environment...")

	dataDir := s.Config.DataDir()
	if err := config.EnsureDataDirPermissions(dataDir); err != nil {
		return fmt.Errorf("failed to prepare data directory: %w", err)
	}

	if s.Config.SettingsPath != "" {
		if !config.FileExists(s.Config.SettingsPath) {
			if err := config.CreateDefaultUserConfig(s.Config.SettingsPath); err != nil {
				return fmt.Errorf("failed to write settings: %w", err)
			}
		}
		fmt.Fprintf(s.Out, "  settings: %s\n", s.Config.SettingsPath)
	}
	fmt.Fprintf(s.Out, "  data:     %s\n", dataDir)
	return nil
}

// CheckOllama runs `ollama list` to see whether the CLI exists and the
// service answers.
func (s *Setup) CheckOllama(ctx context.Context) error {
	if _, err := s.Runner.LookPath("ollama"); err != nil {
		fmt.Fprintln(s.Out, "Ollama is not installed")
		fmt.Fprintf(s.Out, "Please install Ollama from: %s\n", InstallURL)
		return ErrOllamaNotInstalled
	}

	if err := s.Runner.Run(ctx, io.Discard, io.Discard, "ollama", "list"); err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Setup] ollama list failed: %v", err)
		}
		fmt.Fprintln(s.Out, "Ollama is not running")
		return ErrOllamaNotRunning
	}

	fmt.Fprintln(s.Out, "Ollama is installed and running")
	return nil
}

// PullModels pulls every configured model, continuing past failures.
func (s *Setup) PullModels(ctx context.Context) Result {
	var res Result

	for _, name := range s.Config.PullModels {
		fmt.Fprintf(s.Out, "Pulling %s model...\n", name)

		if err := s.Runner.Run(ctx, s.Out, s.Out, "ollama", "pull", name); err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("[Setup] pull %s failed: %v", name, err)
			}
			fmt.Fprintf(s.Out, "Failed to pull %s model\n", name)
			res.Failed = append(res.Failed, name)
			continue
		}

		fmt.Fprintf(s.Out, "%s model ready\n", name)
		res.Pulled = append(res.Pulled, name)
	}

	return res
}
