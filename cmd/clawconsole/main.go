package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/clawconsole/internal/config"
	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/tokens"
)

var (
	cfgPath   string
	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:           "clawconsole",
	Short:         "Operator console for the jclaw admin API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)
	return cfg
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newClient(cfg *config.Config, nav gateway.Navigator) (*gateway.Client, error) {
	client, err := gateway.New(gateway.Settings{
		BaseURL:           cfg.BaseURL,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		Retries:           cfg.RetryAttempts,
		SessionCookieName: cfg.Auth.SessionCookieName,
		SessionCookie:     cfg.Auth.SessionCookie,
		XSRFToken:         cfg.Auth.XSRFToken,
		Navigator:         nav,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

// newConsole wires a Console for one CLI command. counter may be nil.
func newConsole(cmd *cobra.Command, counter *tokens.Counter) (*console.Console, error) {
	cfg := loadConfig()
	client, err := newClient(cfg, stderrNavigator{w: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}
	return console.New(console.Options{
		API:      gateway.NewAPI(client),
		Prompter: newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), assumeYes),
		Counter:  counter,
	}), nil
}
