package cmd

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"chisel/internal/indexer"
	"chisel/internal/project"
)

var (
	flagCompileCommands string
	flagHeaders         bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the construction-API index for a C codebase",
	Long: `Index parses every selected C source file and stores the extracted
function and type records at <project>/.chisel/index.db. Files come
from the project configuration globs, or from a compilation database
when --compile-commands is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagCompileCommands, "compile-commands", "", "path to compile_commands.json to select files")
	indexCmd.Flags().BoolVar(&flagHeaders, "headers", true, "also index .h files next to selected sources")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root, err := workingRoot(args)
	if err != nil {
		return err
	}

	var files []string
	if flagCompileCommands != "" {
		sources, err := project.ParseCompileCommands(flagCompileCommands)
		if err != nil {
			return err
		}
		for _, s := range sources {
			files = append(files, s.Path)
		}
	} else {
		cfg, err := project.Load(root)
		if err != nil {
			return err
		}
		files, err = project.Files(root, cfg)
		if err != nil {
			return err
		}
	}

	if flagHeaders {
		files = append(files, project.SiblingHeaders(files)...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no files to index under %s", root)
	}

	fmt.Printf("Indexing %d files...\n", len(files))
	bar := progressbar.Default(int64(len(files)))
	start := time.Now()

	stats, err := indexer.Build(files, indexer.Config{
		IndexPath: resolveIndexPath(root),
		Logger:    newLogger(),
		OnProgress: func(current, total int, path string) {
			bar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Files:     %d indexed (%d requested)\n", stats.Files, len(files))
	fmt.Printf("  Functions: %d\n", stats.Functions)
	fmt.Printf("  Types:     %d\n", stats.Types)
	return nil
}
