package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/prompt-battle/internal/app"
	"github.com/yungbote/prompt-battle/internal/platform/envutil"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "prompt-battle",
		Short: "Prompt Battle - compare a direct prompt against a generated one",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.LoadDotEnv(envFile); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: failed to load env file: %v\n", err)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to environment file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the generation worker",
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the generation and grade tables",
		RunE:  runMigrate,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Loading environment variables...")
	cfg := app.LoadConfig(log)

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to init app", "error", err)
		log.Sync()
		return err
	}
	defer a.Close()

	if err := a.Start(); err != nil {
		log.Error("Failed to start background services", "error", err)
		return err
	}
	if err := a.Run(ctx); err != nil {
		log.Error("HTTP server stopped", "error", err)
		return err
	}
	log.Info("Shut down cleanly")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	gdb, err := app.OpenDB(log, cfg)
	if err != nil {
		log.Error("Migration failed", "error", err)
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Migration complete", "driver", cfg.DBDriver)
	return nil
}
