package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/app"
	"github.com/carefinder/carefinder/internal/config"
	logpkg "github.com/carefinder/carefinder/internal/logger"
	"github.com/carefinder/carefinder/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	env string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "carefinder",
		Short:         "Natural-language daycare search over the Seoul childcare registry",
		SilenceUsage:  true,
		Version:       version.String(),
	}
	root.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")

	root.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newBuildIndexCmd(opts),
		newQueryCmd(opts),
	)
	return root
}

// bootstrap loads config, builds the logger and wires the application.
func bootstrap(ctx context.Context, opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("Starting carefinder",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.String("db_path", cfg.Database.Path),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("llm_model", cfg.LLM.Model),
	)

	a, err := app.Build(logpkg.ContextWithLogger(ctx, logger), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func shutdown(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Error("Error closing stores", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
