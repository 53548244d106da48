package cparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chisel/internal/model"
)

func parseSource(t *testing.T, src string) []model.FunctionInfo {
	t.Helper()
	p := NewParser()
	tree, err := p.Parse([]byte(src))
	require.NoError(t, err)
	defer tree.Close()
	return ExtractFunctions(tree, "test.c", []byte(src))
}

func functionNamed(t *testing.T, funcs []model.FunctionInfo, name string) model.FunctionInfo {
	t.Helper()
	for _, f := range funcs {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("function %s not extracted", name)
	return model.FunctionInfo{}
}

func TestExtractFunctionDefinition(t *testing.T) {
	funcs := parseSource(t, `
struct foo *foo_new(int x) { return 0; }
`)
	require.Len(t, funcs, 1)

	f := funcs[0]
	require.Equal(t, "foo_new", f.Name)
	require.Equal(t, "struct foo *", f.ReturnType)
	require.Equal(t, 2, f.LineNumber)
	require.True(t, f.HasBody())
	require.Len(t, f.Params, 1)
	require.Equal(t, "int", f.Params[0].Type)
	require.Equal(t, "x", f.Params[0].Name)
}

func TestExtractPrototype(t *testing.T) {
	funcs := parseSource(t, `
struct foo *foo_new(int x);
int foo_init(struct foo *f, int x);
`)
	require.Len(t, funcs, 2)

	fnew := functionNamed(t, funcs, "foo_new")
	require.Equal(t, "struct foo *", fnew.ReturnType)
	require.False(t, fnew.HasBody())

	finit := functionNamed(t, funcs, "foo_init")
	require.Equal(t, "int", finit.ReturnType)
	require.Len(t, finit.Params, 2)
	require.Equal(t, "struct foo *", finit.Params[0].Type)
	require.Equal(t, "f", finit.Params[0].Name)
}

func TestExtractDoublePointerParam(t *testing.T) {
	funcs := parseSource(t, `
int db_open(struct db **out);
`)
	require.Len(t, funcs, 1)
	require.Len(t, funcs[0].Params, 1)
	require.Equal(t, "struct db **", funcs[0].Params[0].Type)
	require.Equal(t, "out", funcs[0].Params[0].Name)
}

func TestExtractVoidParams(t *testing.T) {
	funcs := parseSource(t, `
struct foo *foo_new(void) { return 0; }
`)
	require.Len(t, funcs, 1)
	require.Empty(t, funcs[0].Params)
}

func TestExtractAnonymousParam(t *testing.T) {
	funcs := parseSource(t, `
int compare(int, int);
`)
	require.Len(t, funcs, 1)
	require.Len(t, funcs[0].Params, 2)
	require.Equal(t, "arg0", funcs[0].Params[0].Name)
	require.Equal(t, "arg1", funcs[0].Params[1].Name)
}

func TestExtractDoubleStarReturn(t *testing.T) {
	funcs := parseSource(t, `
char **split_lines(const char *text);
`)
	require.Len(t, funcs, 1)
	require.Equal(t, "char **", funcs[0].ReturnType)
	require.Equal(t, "const char *", funcs[0].Params[0].Type)
}

func TestExtractDedupsWithinFile(t *testing.T) {
	funcs := parseSource(t, `
int foo_init(struct foo *f);
int foo_init(struct foo *f) { return 0; }
`)
	require.Len(t, funcs, 1)
}

func TestDocCommentAttached(t *testing.T) {
	funcs := parseSource(t, `
/* Allocate a new foo.
 * Caller owns the result. */
struct foo *foo_new(void) { return 0; }
`)
	require.Len(t, funcs, 1)
	require.Contains(t, funcs[0].DocComment, "Allocate a new foo")
}

func TestDocCommentStopsAtParagraphBreak(t *testing.T) {
	funcs := parseSource(t, `
/* Unrelated banner comment. */



struct foo *foo_new(void) { return 0; }
`)
	require.Len(t, funcs, 1)
	require.Empty(t, funcs[0].DocComment)
}

func TestDocCommentAccumulatesAdjacentLines(t *testing.T) {
	funcs := parseSource(t, `
// Allocate a new foo.
// Caller owns the result.
struct foo *foo_new(void) { return 0; }
`)
	require.Len(t, funcs, 1)
	require.Contains(t, funcs[0].DocComment, "Allocate a new foo")
	require.Contains(t, funcs[0].DocComment, "Caller owns the result")
}

func TestExtractSkipsNonFunctions(t *testing.T) {
	funcs := parseSource(t, `
int global_counter;
struct foo { int x; };
`)
	require.Empty(t, funcs)
}
