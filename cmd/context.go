package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chisel/internal/assemble"
	"chisel/internal/store"
)

var contextCmd = &cobra.Command{
	Use:   "context <function>",
	Short: "Render the construction context document for a function",
	Args:  cobra.ExactArgs(1),
	RunE:  runContext,
}

func init() {
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	asm, err := openAssembler()
	if err != nil {
		return err
	}
	defer asm.Close()

	doc, err := asm.Assemble(args[0])
	if err != nil {
		return err
	}
	fmt.Println(doc)
	return nil
}

// openAssembler opens the project index, translating a missing index
// into an actionable message.
func openAssembler() (*assemble.Assembler, error) {
	var rootArgs []string
	if flagRoot != "" {
		rootArgs = []string{flagRoot}
	}
	root, err := workingRoot(rootArgs)
	if err != nil {
		return nil, err
	}

	asm, err := assemble.Open(resolveIndexPath(root), newLogger())
	if errors.Is(err, store.ErrIndexNotFound) {
		return nil, fmt.Errorf("no index found for %s\nRun 'chisel index' first to build it", root)
	}
	return asm, err
}
