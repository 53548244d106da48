package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <function>",
	Short: "Show what construction context exists for a function",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	asm, err := openAssembler()
	if err != nil {
		return err
	}
	defer asm.Close()

	s, err := asm.Summary(args[0])
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("function %q not found in index", args[0])
	}

	fmt.Printf("Function: %s\n", s.Function)
	fmt.Println("Parameters:")
	for _, p := range s.Params {
		fmt.Printf("  - %s: %s\n", p.Name, p.Type)
	}

	printNamed := func(heading string, byType map[string][]string) {
		fmt.Printf("\n%s:\n", heading)
		if len(byType) == 0 {
			fmt.Println("  (none)")
			return
		}
		keys := make([]string, 0, len(byType))
		for k := range byType {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			names := byType[k]
			fmt.Printf("  %s:\n", k)
			for i, name := range names {
				if i == 5 {
					fmt.Printf("    ... and %d more\n", len(names)-5)
					break
				}
				fmt.Printf("    - %s()\n", name)
			}
		}
	}

	printNamed("Factories found", s.Factories)
	printNamed("Initializers found", s.Initializers)
	return nil
}
