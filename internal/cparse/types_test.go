package cparse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chisel/internal/model"
)

func parseTypes(t *testing.T, src string) []model.TypeInfo {
	t.Helper()
	p := NewParser()
	tree, err := p.Parse([]byte(src))
	require.NoError(t, err)
	defer tree.Close()
	return ExtractTypes(tree, "test.h", []byte(src))
}

func typeNamed(t *testing.T, types []model.TypeInfo, name string) model.TypeInfo {
	t.Helper()
	for _, ti := range types {
		if ti.Name == name {
			return ti
		}
	}
	t.Fatalf("type %s not extracted", name)
	return model.TypeInfo{}
}

func TestExtractStruct(t *testing.T) {
	types := parseTypes(t, `
struct foo {
	int x;
	char *name;
};
`)
	require.Len(t, types, 1)
	require.Equal(t, "foo", types[0].Name)
	require.Equal(t, model.StructPtr, types[0].Category)
	require.Contains(t, types[0].Source, "char *name;")
}

func TestForwardDeclarationIgnored(t *testing.T) {
	types := parseTypes(t, `
struct foo;
`)
	require.Empty(t, types)
}

func TestExtractEnum(t *testing.T) {
	types := parseTypes(t, `
enum color { RED, GREEN, BLUE };
`)
	require.Len(t, types, 1)
	require.Equal(t, "color", types[0].Name)
	require.Equal(t, model.Enum, types[0].Category)
	require.Equal(t, []string{"RED", "GREEN", "BLUE"}, types[0].EnumValues)
}

func TestExtractTypedefStruct(t *testing.T) {
	types := parseTypes(t, `
typedef struct bar { int y; } bar_t;
`)
	ti := typeNamed(t, types, "bar_t")
	require.Equal(t, model.StructPtr, ti.Category)
	require.Equal(t, "bar", ti.PointerTo)

	// The backing struct is recorded under its own name as well.
	typeNamed(t, types, "bar")
}

func TestExtractPointerTypedef(t *testing.T) {
	types := parseTypes(t, `
typedef struct opaque_impl { int z; } *opaque_handle;
`)
	ti := typeNamed(t, types, "opaque_handle")
	require.Equal(t, model.PointerTypedef, ti.Category)
	require.Equal(t, "opaque_impl", ti.PointerTo)
}

func TestExtractTypedefPrimitive(t *testing.T) {
	types := parseTypes(t, `
typedef int my_status;
`)
	ti := typeNamed(t, types, "my_status")
	require.Equal(t, model.Primitive, ti.Category)
}

func TestTypesDedupedWithinFile(t *testing.T) {
	types := parseTypes(t, `
struct foo { int a; };
struct foo { int a; };
`)
	require.Len(t, types, 1)
}
