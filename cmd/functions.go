package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chisel/internal/model"
	"chisel/internal/store"
)

var flagLimit int

var functionsCmd = &cobra.Command{
	Use:   "functions [pattern]",
	Short: "List indexed functions, optionally filtered by name pattern",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFunctions,
}

func init() {
	functionsCmd.Flags().IntVar(&flagLimit, "limit", 100, "maximum functions to list")
	rootCmd.AddCommand(functionsCmd)
}

func runFunctions(cmd *cobra.Command, args []string) error {
	var rootArgs []string
	if flagRoot != "" {
		rootArgs = []string{flagRoot}
	}
	root, err := workingRoot(rootArgs)
	if err != nil {
		return err
	}

	s, err := store.OpenExisting(resolveIndexPath(root))
	if errors.Is(err, store.ErrIndexNotFound) {
		return fmt.Errorf("no index found for %s\nRun 'chisel index' first to build it", root)
	}
	if err != nil {
		return err
	}
	defer s.Close()

	var list []model.FunctionInfo
	if len(args) > 0 {
		list, err = s.SearchFunctions(args[0], flagLimit)
	} else {
		list, err = s.AllFunctions(flagLimit)
	}
	if err != nil {
		return err
	}
	for _, f := range list {
		fmt.Printf("%-40s %s:%d\n", f.Name, f.FilePath, f.LineNumber)
	}
	return nil
}
