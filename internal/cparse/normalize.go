package cparse

import (
	"regexp"
	"strings"

	"chisel/internal/model"
)

var (
	reQualifier     = regexp.MustCompile(`\b(const|struct|enum)\b`)
	reConst         = regexp.MustCompile(`\bconst\b`)
	reTrailingStars = regexp.MustCompile(`\*+$`)

	rePrimitive  = regexp.MustCompile(`^(const\s+)?(unsigned\s+)?(int|long|short|char|float|double|void)\s*$`)
	reFixedWidth = regexp.MustCompile(`^(const\s+)?(u?int\d+_t|size_t|ssize_t|ptrdiff_t|bool|_Bool)\s*$`)
	reString     = regexp.MustCompile(`^(const\s+)?char\s*\*`)
	reFuncPtr    = regexp.MustCompile(`\(\s*\*\s*\)`)
	reUpperT     = regexp.MustCompile(`^[A-Z].*_t$`)
	reLowerT     = regexp.MustCompile(`^[a-z_]+_t$`)
)

var stdSuffixTypes = map[string]bool{
	"size_t":    true,
	"ssize_t":   true,
	"ptrdiff_t": true,
}

// NormalizeType reduces a declarator type string to its bare name, used
// as the join key between parameter types and return types:
//
//	"struct json_object *" -> "json_object"
//	"const char *"         -> "char"
//	"enum json_type"       -> "json_type"
func NormalizeType(typeStr string) string {
	t := strings.TrimSpace(typeStr)
	t = reQualifier.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)
	t = reTrailingStars.ReplaceAllString(t, "")
	return strings.Join(strings.Fields(t), " ")
}

// CategorizeType classifies a declarator type string. Capitalized or
// `_t`-suffixed opaque typedef names are treated as pointer-like by
// convention, so they land in StructPtr.
func CategorizeType(typeStr string) model.Category {
	t := strings.TrimSpace(typeStr)

	if rePrimitive.MatchString(t) || reFixedWidth.MatchString(t) {
		return model.Primitive
	}
	if reString.MatchString(t) {
		return model.String
	}
	if reFuncPtr.MatchString(t) {
		return model.FuncPtr
	}
	if strings.Contains(t, "enum") {
		return model.Enum
	}
	if strings.Contains(t, "*") || strings.Contains(t, "struct") {
		return model.StructPtr
	}

	bare := strings.TrimSpace(reConst.ReplaceAllString(t, ""))
	if reUpperT.MatchString(bare) {
		return model.StructPtr
	}
	if reLowerT.MatchString(bare) && !stdSuffixTypes[bare] {
		return model.StructPtr
	}
	return model.Primitive
}
