package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chisel/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	st, err := s.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Functions:      %d\n", st.Functions)
	fmt.Printf("Types:          %d\n", st.Types)
	fmt.Printf("Files indexed:  %d\n", st.FileCount)
	fmt.Printf("Last indexed:   %s\n", st.LastIndexed)
	fmt.Printf("Schema version: %d\n", st.SchemaVersion)
	return nil
}
