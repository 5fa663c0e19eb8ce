package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"copypics/internal/app"
	"copypics/internal/config"
	"copypics/internal/pics"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config (or the default path)
// and applies the command-line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = defaults.ConfigPath
	}

	cfg, err := config.Load(path, defaults.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("ledger"); v != "" {
		cfg.Ledger.Type = v
	}
	if v, _ := cmd.Flags().GetString("collision"); v != "" {
		cfg.Import.Collision = v
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "copypics SOURCE DEST",
	Short: "Import photos into a date-structured library",
	Long: `Copies every new photo under SOURCE into DEST/YYYY/Month/DD, using the
EXIF capture date. Photos without one go to DEST/Unknown. Content that was
imported before, from anywhere, is skipped.`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := app.NewCopyPicsApp(cfg, args[0], args[1])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, runErr := a.Import(ctx)
		if err := a.Close(); err != nil {
			return err
		}

		printSummary(report)
		if runErr != nil {
			return runErr
		}
		return nil
	},
}

func printSummary(r *pics.WalkReport) {
	fmt.Printf("Imported %d file(s) (%s), %d duplicate(s), %d skipped, %d failure(s)\n",
		r.Imported, humanize.Bytes(uint64(r.BytesCopied)), r.Duplicates, r.Skipped, len(r.Failures))
	for _, f := range r.Failures {
		var dirErr *pics.DirectoryError
		if errors.As(f, &dirErr) {
			fmt.Printf("  skipped directory %s: %v\n", dirErr.Dir, dirErr.Err)
			continue
		}
		fmt.Printf("  %v\n", f)
	}
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = defaults.ConfigPath
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Log Level:    %s\n", cfg.LogLevel)
		fmt.Printf("Ledger:       %s\n", cfg.Ledger.Type)
		if cfg.Ledger.Path != "" {
			fmt.Printf("Ledger Path:  %s\n", cfg.Ledger.Path)
		}
		fmt.Printf("Patterns:     %v\n", cfg.Import.Patterns)
		fmt.Printf("Exclude:      %v\n", cfg.Import.Exclude)
		fmt.Printf("Unknown Dir:  %s\n", cfg.Import.UnknownDir)
		fmt.Printf("Collision:    %s\n", cfg.Import.Collision)
		if cfg.Metrics.TextfilePath != "" {
			fmt.Printf("Metrics File: %s\n", cfg.Metrics.TextfilePath)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history [DEST]",
	Short: "View import run history (sqlite ledger only)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var dest string
		if len(args) > 0 {
			dest = args[0]
		}

		runs, err := app.History(cfg, dest, limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No import runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if !r.FinishedAt.IsZero() {
				duration = r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("%s  %s  %-8s  %4d new  %4d dup  %3d failed  %s  %s\n",
				shortID(r.ID),
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.Imported,
				r.Duplicates,
				r.Failures,
				duration,
				humanize.Time(r.StartedAt),
			)
		}
		return nil
	},
}

// shortID abbreviates a run UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $COPYPICS_CONFIG_PATH or ~/.config/copypics.toml)")
	rootCmd.PersistentFlags().String("ledger", "", "ledger type: text, sqlite or memory")
	rootCmd.Flags().String("collision", "", "name collision policy: rename, skip or overwrite")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
}
