package lookup

import (
	"strings"

	"chisel/internal/cparse"
	"chisel/internal/model"
)

// Naming-pattern suffixes that turn "<type>" into factory candidates.
// Appended to the normalized type name and matched with SQL LIKE.
var factoryNameSuffixes = []string{
	"_new%", "_create%", "_from_%", "_parse%", "_alloc%", "_init%",
}

// factoryNameWeights are ordered highest-precedence first; the first
// matching row decides the name-tier score. A name ending in "_new" or
// containing "_new_" outranks everything else.
var factoryNameWeights = []struct {
	contains string
	weight   int
}{
	{"_new", 90},
	{"_create", 80},
	{"_alloc", 70},
	{"_parse", 60},
	{"_from_", 60},
	{"_init", 50},
}

// initializerNameWeights score in-place setup functions. "_set_" on a
// key-bearing name ranks just under "_init" because keyed setup is
// usually the one mandatory call.
var initializerNameWeights = []struct {
	contains string
	weight   int
}{
	{"_init", 100},
	{"_set_", 80},
	{"_setup", 75},
	{"_configure", 70},
	{"_begin", 60},
	{"_start", 60},
	{"_reset", 40},
	{"_clear", 30},
}

// initializerNamePatterns gate which names count as initializers at all.
var initializerNamePatterns = []string{
	"_init", "_set_", "_setup", "_configure", "_begin", "_start", "_reset", "_clear",
}

// getterMarkers flag getter/reference-count functions masquerading as
// factories.
var getterMarkers = []string{"_get", "_peek", "_iter", "_ref", "_unref", "_put"}

// destructorMarkers exclude teardown functions from initializer results.
var destructorMarkers = []string{
	"_free", "_destroy", "_release", "_cleanup", "_close",
	"_finish", "_final", "_done", "_end", "_deinit",
}

// needsStateMarkers exclude functions that require already-initialized
// state rather than producing it.
var needsStateMarkers = []string{
	"_update", "_process", "_step", "_feed", "_write", "_read",
}

// outParamNameMarkers gate the output-parameter factory idiom
// (int foo_open(struct foo **out)).
var outParamNameMarkers = []string{"_create", "_new", "_init", "_alloc", "_open"}

// oppositePairs list naming patterns with inverse semantics. A candidate
// matching one side is dropped when the target function matches the
// other.
var oppositePairs = []struct{ a, b string }{
	{"_to_string", "_parse"},
	{"_to_json", "_parse"},
	{"_serialize", "_parse"},
	{"_stringify", "_parse"},
	{"_encode", "_decode"},
	{"_get_", "_set_"},
	{"_read", "_write"},
	{"_load", "_save"},
	{"_pack", "_unpack"},
}

// statusReturnNames are normalized return types of the error-code-return
// convention.
var statusReturnNames = map[string]bool{
	"int":  true,
	"void": true,
	"bool": true,
}

func containsAny(name string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

func matchesInitializerPattern(name string) bool {
	n := strings.ToLower(name)
	if strings.Contains(n, "_deinit") {
		return false
	}
	return containsAny(n, initializerNamePatterns)
}

// isStatusReturn reports whether a return type looks like an error or
// status code rather than a produced value.
func isStatusReturn(returnType string) bool {
	normalized := strings.ToLower(cparse.NormalizeType(returnType))
	if statusReturnNames[normalized] {
		return true
	}
	return strings.Contains(normalized, "err") ||
		strings.Contains(normalized, "status") ||
		strings.Contains(normalized, "result")
}

// isOpposite reports whether the candidate name suggests the inverse
// operation of the target function (parse vs. serialize, encode vs.
// decode). Checked symmetrically.
func isOpposite(targetName, candidateName string) bool {
	if targetName == "" {
		return false
	}
	t := strings.ToLower(targetName)
	c := strings.ToLower(candidateName)
	for _, p := range oppositePairs {
		if strings.Contains(t, p.a) && strings.Contains(c, p.b) {
			return true
		}
		if strings.Contains(t, p.b) && strings.Contains(c, p.a) {
			return true
		}
	}
	return false
}

// isGetterOrPassThrough drops factory candidates that merely hand back
// an existing instance: either the name carries a getter/ref-count
// marker, or the signature both accepts and returns the target type.
// Initializer-named functions are exempt from the pass-through rule
// since they legitimately take-and-not-return the type.
func isGetterOrPassThrough(f *model.FunctionInfo, normalized string) bool {
	name := strings.ToLower(f.Name)
	if containsAny(name, getterMarkers) {
		return true
	}
	if matchesInitializerPattern(f.Name) {
		return false
	}
	takes := false
	for _, p := range f.Params {
		if cparse.NormalizeType(p.Type) == normalized {
			takes = true
			break
		}
	}
	return takes && cparse.NormalizeType(f.ReturnType) == normalized
}

// hasOutParam reports whether the function exposes the target type as a
// double-indirection output parameter. Qualifier placements beyond a
// leading const are not exhaustively handled; this is a known heuristic
// gap.
func hasOutParam(f *model.FunctionInfo, normalized string) bool {
	for _, p := range f.Params {
		if cparse.NormalizeType(p.Type) != normalized {
			continue
		}
		if strings.Count(p.Type, "*") >= 2 {
			return true
		}
	}
	return false
}

func scoreFactoryName(name string) int {
	n := strings.ToLower(name)
	if strings.HasSuffix(n, "_new") || strings.Contains(n, "_new_") {
		return 100
	}
	for _, t := range factoryNameWeights {
		if strings.Contains(n, t.contains) {
			return t.weight
		}
	}
	return 0
}

func scoreInitializerName(name string) int {
	n := strings.ToLower(name)
	if strings.Contains(n, "_set_") && strings.Contains(n, "key") {
		return 95
	}
	for _, t := range initializerNameWeights {
		if strings.Contains(n, t.contains) {
			return t.weight
		}
	}
	return 0
}

// paramCountBonus rewards functions that are easy to call.
func paramCountBonus(f *model.FunctionInfo) int {
	switch {
	case len(f.Params) == 0:
		return 20
	case len(f.Params) <= 2:
		return 10
	}
	return 0
}

func docBonus(f *model.FunctionInfo) int {
	if f.DocComment != "" {
		return 5
	}
	return 0
}
