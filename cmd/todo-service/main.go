package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Raisondetr3/todo-service/internal/config"
	"github.com/Raisondetr3/todo-service/pkg/logger"
	"github.com/spf13/cobra"
)

const serviceName = "todo-service"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	envFile    string
	configFile string
	cfg        *config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Todo task service",
		Long:          "HTTP (and optional gRPC) API for managing todo tasks backed by PostgreSQL.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(
		a.newServeCommand(),
		a.newDBCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

// setup loads .env, configuration and the logger for every subcommand.
func (a *app) setup() error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", a.envFile, err)
		}
		slog.Debug("No .env file found, using environment variables", slog.String("path", a.envFile))
	}

	if a.configFile != "" {
		if err := os.Setenv("CONFIG_FILE", a.configFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	loggerCfg := logger.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
		FileName: cfg.Logging.FileName,
	}

	if err := logger.SetupLogger(loggerCfg, serviceName); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	a.cfg = cfg
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serviceName, version)
		},
	}
}
