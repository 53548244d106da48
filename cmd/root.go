package cmd

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chisel/internal/project"
)

var (
	flagDB       string
	flagRoot     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "chisel",
	Short: "Construction-API retrieval over C codebases",
	Long: `chisel indexes a C codebase and answers one question precisely:
given a target function, which APIs exist to construct and initialize
the objects it needs.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "index database path (default <project>/.chisel/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "project root (default current directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// newLogger builds the handle passed into build/assemble calls.
func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveIndexPath returns --db when set, else the fixed per-project
// path under root.
func resolveIndexPath(root string) string {
	if flagDB != "" {
		return flagDB
	}
	return project.IndexPath(root)
}

// workingRoot resolves an optional positional path argument against the
// current directory.
func workingRoot(args []string) (string, error) {
	if len(args) > 0 {
		return filepath.Abs(args[0])
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return wd, nil
}
