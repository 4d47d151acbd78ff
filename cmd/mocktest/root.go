package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ii-tuitions/mocktest/internal/app"
	"github.com/ii-tuitions/mocktest/internal/platform/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mocktest",
		Short:        "Curriculum-based mock test generator",
		Long:         "mocktest generates board, grade and subject specific mock tests and exports them as PDF and Excel.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("curriculum", "", "Directory with catalog.yaml and keywords.yaml (overrides MOCKTEST_CURRICULUM_PATH)")
	root.PersistentFlags().String("provider", "", "AI provider (overrides MOCKTEST_AI_PROVIDER)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckTopicCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newPingCmd())
	return root
}

// loadConfig reads the environment and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("curriculum"); v != "" {
		cfg.CurriculumPath = v
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.AI.Provider = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp builds the application for a command. Logs go to stderr so
// command output stays clean.
func openApp(ctx context.Context, cmd *cobra.Command, withSessions bool) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return app.New(ctx, cfg, logger, withSessions)
}
