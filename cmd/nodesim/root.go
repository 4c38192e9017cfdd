package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ystepanoff/nrfnode/config"
)

// app is what every sub-command shares once the root has run.
type app struct {
	configPath string
	envFile    string
	verbose    bool

	cfg *config.Config
	log *logrus.Logger
	ctx context.Context
}

// Execute builds the command tree and runs it. SIGINT and SIGTERM cancel
// the shared context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{ctx: ctx, log: logrus.New()}

	rootCmd := &cobra.Command{
		Use:           "nodesim",
		Short:         "nodesim runs a simulated low-power sensor node and polls it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to the node YAML config (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Dotenv file with NRFNODE_* overrides; a missing file is ignored")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose mode")

	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newPollCommand(a))
	rootCmd.AddCommand(newPresentCommand(a))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd.ExecuteContext(ctx)
}

// setup loads the environment and the configuration and configures the
// logger from them.
func (a *app) setup() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg := &config.Config{}
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	a.cfg = cfg

	return a.setupLogger()
}

func (a *app) setupLogger() error {
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.verbose {
		level = logrus.DebugLevel
	}
	a.log.SetLevel(level)

	if a.cfg.Log.File != "" {
		a.log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   a.cfg.Log.File,
			MaxSize:    a.cfg.Log.MaxSizeMB,
			MaxBackups: a.cfg.Log.MaxBackups,
		}))
	}
	return nil
}
