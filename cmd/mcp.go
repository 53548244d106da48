package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"chisel/internal/assemble"
	"chisel/internal/lookup"
	"chisel/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing the construction-API tools",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	asm, err := openAssembler()
	if err != nil {
		return err
	}
	defer asm.Close()

	var rootArgs []string
	if flagRoot != "" {
		rootArgs = []string{flagRoot}
	}
	root, err := workingRoot(rootArgs)
	if err != nil {
		return err
	}
	st, err := store.OpenExisting(resolveIndexPath(root))
	if err != nil {
		return err
	}
	defer st.Close()
	engine := lookup.NewEngine(st)

	s := mcpserver.NewMCPServer("chisel", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(functionContextTool(), makeFunctionContextHandler(asm))
	s.AddTool(contextSummaryTool(), makeContextSummaryHandler(asm))
	s.AddTool(findFactoriesTool(), makeFindFactoriesHandler(engine))
	s.AddTool(indexStatsTool(), makeIndexStatsHandler(st))

	return mcpserver.ServeStdio(s)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func functionContextTool() mcp.Tool {
	return mcp.NewTool("get_function_context",
		mcp.WithDescription("Render the full construction-context document for a target C function: its signature, ranked constructors and initializers for its parameter types, required declarations, and a per-parameter initialization guide."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("function",
			mcp.Required(),
			mcp.Description("Name of the target function"),
		),
	)
}

func contextSummaryTool() mcp.Tool {
	return mcp.NewTool("get_context_summary",
		mcp.WithDescription("List the factories and initializers discovered for a target function's parameter types, without rendering the full document."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("function",
			mcp.Required(),
			mcp.Description("Name of the target function"),
		),
	)
}

func findFactoriesTool() mcp.Tool {
	return mcp.NewTool("find_factories",
		mcp.WithDescription("Rank the functions that can construct an instance of a given C type."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("C type to find constructors for, e.g. 'struct json_object *' or 'json_object'"),
		),
	)
}

func indexStatsTool() mcp.Tool {
	return mcp.NewTool("index_stats",
		mcp.WithDescription("Report the size and build metadata of the construction-API index."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeFunctionContextHandler(asm *assemble.Assembler) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("function", "")
		if name == "" {
			return mcp.NewToolResultError("function is required"), nil
		}
		doc, err := asm.Assemble(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("assemble failed: %v", err)), nil
		}
		return mcp.NewToolResultText(doc), nil
	}
}

func makeContextSummaryHandler(asm *assemble.Assembler) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := req.GetString("function", "")
		if name == "" {
			return mcp.NewToolResultError("function is required"), nil
		}
		s, err := asm.Summary(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("summary failed: %v", err)), nil
		}
		if s == nil {
			return mcp.NewToolResultError(fmt.Sprintf("function %q not found in index", name)), nil
		}
		return mcp.NewToolResultText(formatSummary(s)), nil
	}
}

func makeFindFactoriesHandler(engine *lookup.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		typeName := req.GetString("type", "")
		if typeName == "" {
			return mcp.NewToolResultError("type is required"), nil
		}
		factories, err := engine.FindFactories(typeName, "")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if len(factories) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No constructors found for %q", typeName)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Constructors for %q (%d)\n\n", typeName, len(factories))
		for _, f := range factories {
			fmt.Fprintf(&sb, "- **%s** returns `%s` (%s:%d)\n", f.Name, f.ReturnType, f.FilePath, f.LineNumber)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeIndexStatsHandler(st *store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := st.Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(
			"Functions: %d\nTypes: %d\nFiles indexed: %d\nLast indexed: %s\nSchema version: %d",
			stats.Functions, stats.Types, stats.FileCount, stats.LastIndexed, stats.SchemaVersion)), nil
	}
}

// --- Formatting helpers ---

func formatSummary(s *assemble.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Context summary for `%s`\n\n", s.Function)

	sb.WriteString("**Parameters:**\n")
	for _, p := range s.Params {
		fmt.Fprintf(&sb, "- `%s`: `%s`\n", p.Name, p.Type)
	}

	writeByType := func(heading string, byType map[string][]string) {
		fmt.Fprintf(&sb, "\n**%s:**\n", heading)
		if len(byType) == 0 {
			sb.WriteString("- (none)\n")
			return
		}
		keys := make([]string, 0, len(byType))
		for k := range byType {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "- `%s`: %s\n", k, strings.Join(byType[k], ", "))
		}
	}

	writeByType("Factories", s.Factories)
	writeByType("Initializers", s.Initializers)
	return sb.String()
}
