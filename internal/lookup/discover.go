package lookup

import (
	"fmt"
	"sort"
	"strings"

	"chisel/internal/cparse"
	"chisel/internal/model"
)

// DefaultMaxDepth bounds transitive factory collection in the
// context-assembly path: only direct dependencies-of-dependencies.
const DefaultMaxDepth = 1

// FindFactories ranks functions that can produce an instance of the
// given type. targetFn, when non-empty, is the function the caller
// ultimately wants to drive; candidates semantically opposite to it are
// dropped.
func (e *Engine) FindFactories(typeName, targetFn string) ([]model.FunctionInfo, error) {
	normalized := cparse.NormalizeType(typeName)
	if normalized == "" {
		return nil, nil
	}

	// (a) return-type match
	byReturn, err := e.store.FunctionsByReturnType(normalized)
	if err != nil {
		return nil, fmt.Errorf("factories for %s: %w", typeName, err)
	}

	// (b) naming conventions
	patterns := make([]string, len(factoryNameSuffixes))
	for i, suffix := range factoryNameSuffixes {
		patterns[i] = normalized + suffix
	}
	byName, err := e.store.FunctionsNameLikeAny(patterns)
	if err != nil {
		return nil, fmt.Errorf("factories for %s: %w", typeName, err)
	}

	// (c) output-parameter, error-code return idiom
	byParam, err := e.store.FunctionsParamsContaining(normalized)
	if err != nil {
		return nil, fmt.Errorf("factories for %s: %w", typeName, err)
	}
	var outParam []model.FunctionInfo
	for _, f := range byParam {
		if hasOutParam(&f, normalized) && isStatusReturn(f.ReturnType) &&
			containsAny(strings.ToLower(f.Name), outParamNameMarkers) {
			outParam = append(outParam, f)
		}
	}

	candidates := dedupByName(byReturn, byName, outParam)

	type scored struct {
		fn    model.FunctionInfo
		score int
	}
	var survivors []scored
	for _, f := range candidates {
		if isGetterOrPassThrough(&f, normalized) {
			continue
		}
		if isOpposite(targetFn, f.Name) {
			continue
		}
		survivors = append(survivors, scored{
			fn:    f,
			score: scoreFactoryName(f.Name) + paramCountBonus(&f) + docBonus(&f),
		})
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].score > survivors[j].score
	})

	result := make([]model.FunctionInfo, len(survivors))
	for i, s := range survivors {
		result[i] = s.fn
	}
	return result, nil
}

// FindInitializers ranks functions that populate a caller-owned instance
// of the given type in place.
func (e *Engine) FindInitializers(typeName, targetFn string) ([]model.FunctionInfo, error) {
	normalized := cparse.NormalizeType(typeName)
	if normalized == "" {
		return nil, nil
	}

	byParam, err := e.store.FunctionsParamsContaining(normalized)
	if err != nil {
		return nil, fmt.Errorf("initializers for %s: %w", typeName, err)
	}
	candidates := dedupByName(byParam)

	type scored struct {
		fn    model.FunctionInfo
		score int
	}
	var survivors []scored
	for _, f := range candidates {
		if !isStatusReturn(f.ReturnType) {
			continue
		}
		name := strings.ToLower(f.Name)
		if containsAny(name, destructorMarkers) || containsAny(name, needsStateMarkers) {
			continue
		}
		if isOpposite(targetFn, f.Name) {
			continue
		}
		if !matchesInitializerPattern(f.Name) {
			continue
		}
		// Guard against textual-containment false positives: one
		// parameter must truly be the target type.
		takesType := false
		for _, p := range f.Params {
			if cparse.NormalizeType(p.Type) == normalized {
				takesType = true
				break
			}
		}
		if !takesType {
			continue
		}
		survivors = append(survivors, scored{
			fn:    f,
			score: scoreInitializerName(f.Name) + paramCountBonus(&f) + docBonus(&f),
		})
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].score > survivors[j].score
	})

	result := make([]model.FunctionInfo, len(survivors))
	for i, s := range survivors {
		result[i] = s.fn
	}
	return result, nil
}

// CollectFactories discovers factories for the given types and,
// transitively, for the struct-pointer parameters those factories
// themselves require, bounded by maxDepth. Keys of the returned map are
// normalized type names. Implemented as a worklist so raising maxDepth
// never grows the call stack.
func (e *Engine) CollectFactories(typeNames []string, maxDepth int, targetFn string) (map[string][]model.FunctionInfo, error) {
	type item struct {
		typ   string
		depth int
	}

	out := make(map[string][]model.FunctionInfo)
	visited := make(map[string]bool)
	var queue []item
	for _, t := range typeNames {
		queue = append(queue, item{typ: t})
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		key := cparse.NormalizeType(it.typ)
		if key == "" || visited[key] || it.depth > maxDepth {
			continue
		}
		visited[key] = true

		factories, err := e.FindFactories(it.typ, targetFn)
		if err != nil {
			return nil, err
		}
		if len(factories) == 0 {
			continue
		}
		out[key] = factories

		for _, f := range factories {
			for _, p := range f.Params {
				if cparse.CategorizeType(p.Type) == model.StructPtr {
					queue = append(queue, item{typ: p.Type, depth: it.depth + 1})
				}
			}
		}
	}

	return out, nil
}
