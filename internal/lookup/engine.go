package lookup

import (
	"fmt"

	"chisel/internal/model"
	"chisel/internal/store"
)

// Engine answers construction-API queries against a finished index.
// It is read-only; concurrent queries are safe.
type Engine struct {
	store *store.Store
}

// NewEngine wraps a store handle.
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Function returns the merged record for a name, applying the
// header-vs-definition precedence rule (model.Merge). Returns nil when
// the function is absent from the index.
func (e *Engine) Function(name string) (*model.FunctionInfo, error) {
	rows, err := e.store.FunctionsByName(name)
	if err != nil {
		return nil, fmt.Errorf("lookup function %s: %w", name, err)
	}
	return model.Merge(rows), nil
}

// dedupByName keeps the first row seen for each function name. Callers
// order documented rows first so the documented variant survives.
func dedupByName(groups ...[]model.FunctionInfo) []model.FunctionInfo {
	seen := make(map[string]bool)
	var out []model.FunctionInfo
	for _, group := range groups {
		for _, f := range group {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}
