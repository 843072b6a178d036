// Package app wires the CLI together: flags and environment become a running
// server, a one-shot listing, or the terminal dashboard.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/noteports/noteports/internal/catalog"
	"github.com/noteports/noteports/internal/monitor"
	"github.com/noteports/noteports/internal/proc"
)

var (
	versionString = "dev"
	buildString   = ""
)

// SetVersionBuildCommitString records build metadata injected via ldflags.
func SetVersionBuildCommitString(version, commit, buildDate string) {
	if version != "" {
		versionString = version
	}
	if commit != "" || buildDate != "" {
		buildString = fmt.Sprintf("(%s %s)", commit, buildDate)
	}
}

var rootCmd = &cobra.Command{
	Use:   "noteports",
	Short: "Monitor host ports against a catalog of expected services",
	Long: `noteports watches which ports are in use on this host, by which process,
and reconciles that against a catalog of services you expect to be running.
The result is served on a local web page and JSON API.

Running noteports without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Execute runs the CLI. Exits non-zero on error, cobra prints the message.
func Execute() {
	rootCmd.Version = strings.TrimSpace(versionString + " " + buildString)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config-dir", "config", "directory holding the service catalog")
	rootCmd.Flags().String("host", "0.0.0.0", "listen address")
	rootCmd.Flags().IntP("port", "p", 7577, "web port")

	viper.SetEnvPrefix("noteports")
	viper.AutomaticEnv()
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	viper.BindPFlag("host", rootCmd.Flags().Lookup("host"))
	viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
}

// newLogger builds the process-wide logger. Debug level when --debug or
// NOTEPORTS_DEBUG is set.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// newMonitor opens the catalog and wires it to the live socket reader.
func newMonitor(logger *slog.Logger) (*monitor.Monitor, error) {
	path := filepath.Join(viper.GetString("config_dir"), "config.json")
	store, skipped, err := catalog.Open(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if len(skipped) > 0 {
		logger.Warn("catalog loaded with skipped entries", "path", path, "skipped", len(skipped))
	}
	logger.Info("catalog loaded", "path", path, "services", store.Len())
	return monitor.New(store, proc.Snapshot, logger), nil
}
