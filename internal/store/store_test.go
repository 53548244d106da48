package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chisel/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenExistingMissing(t *testing.T) {
	_, err := OpenExisting(filepath.Join(t.TempDir(), "absent.db"))
	require.ErrorIs(t, err, ErrIndexNotFound)
}

func TestFunctionRoundTrip(t *testing.T) {
	s := openTestStore(t)

	f := model.FunctionInfo{
		Name:       "foo_new",
		ReturnType: "struct foo *",
		Params:     []model.Param{{Type: "int", Name: "x"}},
		FilePath:   "foo.c",
		LineNumber: 12,
		Source:     "struct foo *foo_new(int x) { return 0; }",
		DocComment: "/* Allocates a foo. */",
	}
	require.NoError(t, s.UpsertFunction(f, "foo"))

	rows, err := s.FunctionsByName("foo_new")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, f, rows[0])
}

func TestUpsertFunctionIdempotent(t *testing.T) {
	s := openTestStore(t)

	f := model.FunctionInfo{Name: "foo_new", ReturnType: "struct foo *", FilePath: "foo.c"}
	require.NoError(t, s.UpsertFunction(f, "foo"))
	require.NoError(t, s.UpsertFunction(f, "foo"))

	st, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, st.Functions)
}

func TestSameNameDifferentFiles(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertFunction(
		model.FunctionInfo{Name: "foo_new", ReturnType: "struct foo *", FilePath: "foo.h"}, "foo"))
	require.NoError(t, s.UpsertFunction(
		model.FunctionInfo{Name: "foo_new", ReturnType: "struct foo *", FilePath: "foo.c"}, "foo"))

	rows, err := s.FunctionsByName("foo_new")
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestFunctionsByReturnTypeDocumentedFirst(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertFunction(
		model.FunctionInfo{Name: "foo_create", ReturnType: "struct foo *", FilePath: "a.c"}, "foo"))
	require.NoError(t, s.UpsertFunction(
		model.FunctionInfo{Name: "foo_new", ReturnType: "struct foo *", FilePath: "b.c",
			DocComment: "/* doc */"}, "foo"))

	rows, err := s.FunctionsByReturnType("foo")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "foo_new", rows[0].Name)
}

func TestFunctionsNameLikeAny(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"foo_new", "foo_create_ex", "bar_new"} {
		require.NoError(t, s.UpsertFunction(
			model.FunctionInfo{Name: name, ReturnType: "void", FilePath: "a.c"}, "void"))
	}

	rows, err := s.FunctionsNameLikeAny([]string{"foo_new%", "foo_create%"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = s.FunctionsNameLikeAny(nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestFunctionsParamsContaining(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertFunction(model.FunctionInfo{
		Name: "foo_init", ReturnType: "int", FilePath: "a.c",
		Params: []model.Param{{Type: "struct foo *", Name: "f"}},
	}, "int"))
	require.NoError(t, s.UpsertFunction(model.FunctionInfo{
		Name: "bar_init", ReturnType: "int", FilePath: "a.c",
		Params: []model.Param{{Type: "struct bar *", Name: "b"}},
	}, "int"))

	rows, err := s.FunctionsParamsContaining("foo")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "foo_init", rows[0].Name)
}

func TestTypeRoundTripAndLastWriteWins(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertType(model.TypeInfo{
		Name: "color", Category: model.Enum,
		EnumValues: []string{"RED", "GREEN"},
		FilePath:   "a.h", Source: "enum color { RED, GREEN };",
	}))

	ti, err := s.TypeByName("enum color", "color")
	require.NoError(t, err)
	require.NotNil(t, ti)
	require.Equal(t, model.Enum, ti.Category)
	require.Equal(t, []string{"RED", "GREEN"}, ti.EnumValues)

	// A later definition under the same name replaces the first.
	require.NoError(t, s.UpsertType(model.TypeInfo{
		Name: "color", Category: model.Enum,
		EnumValues: []string{"BLUE"},
		FilePath:   "b.h", Source: "enum color { BLUE };",
	}))
	ti, err = s.TypeByName("color", "color")
	require.NoError(t, err)
	require.Equal(t, "b.h", ti.FilePath)

	st, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, st.Types)
}

func TestTypeByNameMissing(t *testing.T) {
	s := openTestStore(t)
	ti, err := s.TypeByName("ghost", "ghost")
	require.NoError(t, err)
	require.Nil(t, ti)
}

func TestMetaAndStats(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetMeta(MetaLastIndexed, "2026-01-01T00:00:00Z"))
	require.NoError(t, s.SetMeta(MetaFileCount, "3"))
	require.NoError(t, s.SetMeta(MetaFileCount, "4"))

	st, err := s.Stats()
	require.NoError(t, err)
	require.Equal(t, "2026-01-01T00:00:00Z", st.LastIndexed)
	require.Equal(t, 4, st.FileCount)
	require.Equal(t, SchemaVersion, st.SchemaVersion)

	v, err := s.GetMeta("nonexistent")
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSearchAndAllFunctions(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"alpha", "beta", "alphabet"} {
		require.NoError(t, s.UpsertFunction(
			model.FunctionInfo{Name: name, ReturnType: "void", FilePath: "a.c"}, "void"))
	}

	rows, err := s.SearchFunctions("alpha", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = s.AllFunctions(2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "alpha", rows[0].Name)
}
