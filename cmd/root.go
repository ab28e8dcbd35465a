package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/app"
	"github.com/abhisek/progresstrack/internal/config"
	"github.com/abhisek/progresstrack/internal/logging"
	"github.com/abhisek/progresstrack/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "progresstrack",
	Short:        "Course progress tracking and analytics",
	Long:         "progresstrack records learner progress through a course and computes course-wide statistics.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PROGRESSTRACK_DB env var)")
	rootCmd.PersistentFlags().String("course", "", "Path to course definition YAML (overrides PROGRESSTRACK_COURSE env var)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: dev, debug or prod (overrides PROGRESSTRACK_LOG_MODE env var)")
	rootCmd.PersistentFlags().String("env-file", "", "Path to .env file (default .env)")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig layers flags over environment over defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.ConfigFromEnv()
	if err != nil {
		return config.Config{}, err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if p, _ := cmd.Flags().GetString("course"); p != "" {
		cfg.CoursePath = p
	}
	if m, _ := cmd.Flags().GetString("log-mode"); m != "" {
		cfg.LogMode = m
	}
	if cfg.DBPath != "" {
		if err := store.EnsureDir(cfg.DBPath); err != nil {
			return config.Config{}, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	return cfg, nil
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	a, err := app.Open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}
