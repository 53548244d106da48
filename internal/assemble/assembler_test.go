package assemble

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chisel/internal/indexer"
)

const widgetSource = `
struct widget { int id; char *name; };

enum widget_mode { MODE_FAST, MODE_SAFE };

/* Allocate a fresh widget. */
struct widget *widget_new(void) { return 0; }

struct widget *widget_new_with_mode(enum widget_mode mode) { return 0; }

int widget_set_name(struct widget *w, const char *name) { return 0; }

int widget_init(struct widget *w) { return 0; }

void widget_render(struct widget *w, int flags) { }

static struct widget *widget_new_hidden(void) { return 0; }
`

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAssembler(t *testing.T, source string) *Assembler {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "widget.c")
	require.NoError(t, os.WriteFile(src, []byte(source), 0o644))

	indexPath := filepath.Join(dir, "index.db")
	_, err := indexer.Build([]string{src}, indexer.Config{
		IndexPath: indexPath,
		Logger:    discard(),
	})
	require.NoError(t, err)

	asm, err := Open(indexPath, discard())
	require.NoError(t, err)
	t.Cleanup(func() { asm.Close() })
	return asm
}

func TestAssembleNotFound(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	doc, err := asm.Assemble("nonexistent_fn")
	require.NoError(t, err)
	require.Equal(t, "<!-- Function 'nonexistent_fn' not found in index -->", doc)
}

func TestAssembleSections(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	doc, err := asm.Assemble("widget_render")
	require.NoError(t, err)

	require.Contains(t, doc, "## Context for generating a driver for `widget_render`")
	require.Contains(t, doc, "### Target Function")
	require.Contains(t, doc, "### Factory Pattern (object constructors)")
	require.Contains(t, doc, "#### For `widget` (or `struct widget *`)")
	require.Contains(t, doc, "### Initializer Pattern (caller-allocated instance)")
	require.Contains(t, doc, "### Required Extern Declarations")
	require.Contains(t, doc, "### Type Information")
	require.Contains(t, doc, "### Parameter Initialization Guide")

	// Discovery results and sources.
	require.Contains(t, doc, "widget_new")
	require.Contains(t, doc, "/* Allocate a fresh widget. */")
	require.Contains(t, doc, "struct widget { int id; char *name; }")

	// Initializer usage skeleton.
	require.Contains(t, doc, "struct widget obj;")
	require.Contains(t, doc, "widget_render(&obj, /* ... */);")
}

func TestAssembleExternDeclarations(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	doc, err := asm.Assemble("widget_render")
	require.NoError(t, err)

	require.Contains(t, doc, "struct widget;")
	require.Contains(t, doc, "extern struct widget *widget_new(void);")
	// static functions cannot be redeclared extern.
	require.NotContains(t, doc, "extern static")
	require.NotContains(t, doc, "extern struct widget *widget_new_hidden")
}

func TestAssembleParamGuide(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	doc, err := asm.Assemble("widget_render")
	require.NoError(t, err)

	require.Contains(t, doc, "| `w` | `struct widget *` | Use `widget_new()` or similar |")
	require.Contains(t, doc, "| `flags` | `int` | Any representative value |")
}

func TestAssembleEnumParamTypeCollected(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	doc, err := asm.Assemble("widget_render")
	require.NoError(t, err)

	// widget_new_with_mode takes an enum; its definition is included so
	// the caller can pick an enumerator.
	require.Contains(t, doc, "enum widget_mode { MODE_FAST, MODE_SAFE }")
}

func TestAssembleNoStructParams(t *testing.T) {
	asm := newTestAssembler(t, `
int add(int a, int b) { return a + b; }
`)

	doc, err := asm.Assemble("add")
	require.NoError(t, err)
	require.Contains(t, doc, "### Target Function")
	require.NotContains(t, doc, "### Factory Pattern")
	require.Contains(t, doc, "| `a` | `int` | Any representative value |")
}

func TestSummary(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	s, err := asm.Summary("widget_render")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, "widget_render", s.Function)
	require.Len(t, s.Params, 2)

	require.Contains(t, s.Factories, "widget")
	require.Contains(t, s.Factories["widget"], "widget_new")
	require.Contains(t, s.Initializers, "widget")
	require.Contains(t, s.Initializers["widget"], "widget_init")
	require.Contains(t, s.Initializers["widget"], "widget_set_name")
}

func TestSummaryNotFound(t *testing.T) {
	asm := newTestAssembler(t, widgetSource)

	s, err := asm.Summary("nonexistent_fn")
	require.NoError(t, err)
	require.Nil(t, s)
}
