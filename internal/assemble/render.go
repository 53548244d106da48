package assemble

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"chisel/internal/cparse"
	"chisel/internal/model"
)

const (
	maxBodyLines      = 80
	maxShownPerType   = 10
	maxDeclaredSigs   = 5
	truncationMarker  = "/* ... body truncated ... */"
	auxIdentMaxLength = 24
)

// signature returns the prototype form of a function: everything before
// the body, terminated with a semicolon.
func signature(f *model.FunctionInfo) string {
	sig := f.Source
	if idx := strings.Index(sig, "{"); idx >= 0 {
		sig = sig[:idx]
	}
	sig = strings.TrimSpace(sig)
	if !strings.HasSuffix(sig, ";") {
		sig += ";"
	}
	return sig
}

// truncateBody caps the rendered source at maxBodyLines.
func truncateBody(source string) string {
	lines := strings.Split(source, "\n")
	if len(lines) <= maxBodyLines {
		return source
	}
	return strings.Join(lines[:maxBodyLines], "\n") + "\n" + truncationMarker
}

// render produces the full document. Section headings and code-fence
// delimiters are consumed verbatim downstream; changing them is a
// breaking interface change.
func render(ctx *context) string {
	var b strings.Builder
	target := ctx.target

	fmt.Fprintf(&b, "## Context for generating a driver for `%s`\n\n", target.Name)

	renderTarget(&b, target)
	renderFactories(&b, ctx)
	renderInitializers(&b, ctx)
	renderExternDeclarations(&b, ctx)
	renderTypeInformation(&b, ctx)
	renderParamGuide(&b, ctx)

	return b.String()
}

func renderTarget(b *strings.Builder, target *model.FunctionInfo) {
	b.WriteString("### Target Function\n")
	b.WriteString("```c\n")
	if target.DocComment != "" {
		b.WriteString(target.DocComment)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "// From %s:%d\n", filepath.Base(target.FilePath), target.LineNumber)
	b.WriteString(truncateBody(target.Source))
	b.WriteString("\n```\n\n")
}

func renderFactories(b *strings.Builder, ctx *context) {
	keys := ctx.relevantKeys()
	any := false
	for _, key := range keys {
		if len(ctx.factories[key]) > 0 {
			any = true
			break
		}
	}
	if !any {
		return
	}

	b.WriteString("### Factory Pattern (object constructors)\n\n")
	b.WriteString("**Use these functions to create objects. Do not allocate the structs by hand.**\n\n")

	for _, key := range keys {
		funcs := ctx.factories[key]
		if len(funcs) == 0 {
			continue
		}
		fmt.Fprintf(b, "#### For `%s` (or `struct %s *`)\n", key, key)
		b.WriteString("```c\n")
		for _, f := range topN(funcs, maxShownPerType) {
			writeCandidate(b, &f)
		}
		b.WriteString("```\n\n")
	}
}

func renderInitializers(b *strings.Builder, ctx *context) {
	keys := ctx.relevantKeys()
	any := false
	for _, key := range keys {
		if len(ctx.initializers[key]) > 0 {
			any = true
			break
		}
	}
	if !any {
		return
	}

	b.WriteString("### Initializer Pattern (caller-allocated instance)\n\n")

	for _, key := range keys {
		inits := ctx.initializers[key]
		if len(inits) == 0 {
			continue
		}
		fmt.Fprintf(b, "#### For `%s`\n", key)
		b.WriteString("Typical usage:\n")
		b.WriteString("```c\n")
		structName := ctx.backingStruct(key)
		fmt.Fprintf(b, "struct %s obj;\n", structName)
		fmt.Fprintf(b, "%s(&obj, /* ... */);\n", inits[0].Name)
		fmt.Fprintf(b, "%s(&obj, /* ... */);\n", ctx.target.Name)
		b.WriteString("```\n")
		b.WriteString("```c\n")
		for _, f := range topN(inits, maxShownPerType) {
			writeCandidate(b, &f)
		}
		b.WriteString("```\n\n")
	}
}

func writeCandidate(b *strings.Builder, f *model.FunctionInfo) {
	if f.DocComment != "" {
		b.WriteString(f.DocComment)
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "// From %s:%d\n", filepath.Base(f.FilePath), f.LineNumber)
	b.WriteString(signature(f))
	b.WriteString("\n\n")
}

func renderExternDeclarations(b *strings.Builder, ctx *context) {
	keys := ctx.relevantKeys()
	if len(keys) == 0 {
		return
	}

	b.WriteString("### Required Extern Declarations\n\n")
	b.WriteString("```c\n")

	// Forward-declare each backing struct, resolving pointer typedefs
	// to their underlying struct name.
	declared := make(map[string]bool)
	for _, key := range keys {
		name := ctx.backingStruct(key)
		if name == "" || declared[name] {
			continue
		}
		declared[name] = true
		fmt.Fprintf(b, "struct %s;\n", name)
	}
	b.WriteString("\n")

	for _, ti := range ctx.auxTypes {
		if ti.Source == "" {
			continue
		}
		b.WriteString(ti.Source)
		b.WriteString("\n")
	}
	if len(ctx.auxTypes) > 0 {
		b.WriteString("\n")
	}

	seen := make(map[string]bool)
	for _, key := range keys {
		for _, f := range topN(ctx.factories[key], maxDeclaredSigs) {
			writeExtern(b, &f, seen)
		}
		for _, f := range topN(ctx.initializers[key], maxDeclaredSigs) {
			writeExtern(b, &f, seen)
		}
	}

	b.WriteString("```\n\n")
}

func writeExtern(b *strings.Builder, f *model.FunctionInfo, seen map[string]bool) {
	if seen[f.Name] {
		return
	}
	seen[f.Name] = true
	sig := signature(f)
	// static functions cannot be redeclared extern.
	if strings.HasPrefix(sig, "static ") || strings.Contains(sig, " static ") {
		return
	}
	if !strings.HasPrefix(sig, "extern ") {
		sig = "extern " + sig
	}
	b.WriteString(sig)
	b.WriteString("\n")
}

func renderTypeInformation(b *strings.Builder, ctx *context) {
	if len(ctx.typeDefs) == 0 {
		return
	}

	b.WriteString("### Type Information\n")
	b.WriteString("```c\n")
	// Directly requested types first, then collected enums.
	written := make(map[string]bool)
	for _, key := range ctx.relevantKeys() {
		if ti, ok := ctx.typeDefs[key]; ok && ti.Source != "" {
			fmt.Fprintf(b, "// %s: %s\n%s\n\n", ti.Category, key, ti.Source)
			written[key] = true
		}
	}
	var rest []string
	for key := range ctx.typeDefs {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		if ti := ctx.typeDefs[key]; ti.Source != "" {
			fmt.Fprintf(b, "// %s: %s\n%s\n\n", ti.Category, key, ti.Source)
		}
	}
	b.WriteString("```\n\n")
}

func renderParamGuide(b *strings.Builder, ctx *context) {
	target := ctx.target
	if len(target.Params) == 0 {
		return
	}

	b.WriteString("### Parameter Initialization Guide\n\n")
	b.WriteString("| Parameter | Type | Recommended Approach |\n")
	b.WriteString("|-----------|------|---------------------|\n")

	for _, p := range target.Params {
		fmt.Fprintf(b, "| `%s` | `%s` | %s |\n", p.Name, p.Type, ctx.approachFor(p))
	}
	b.WriteString("\n")
}

// approachFor maps a parameter to a recommended construction approach.
func (ctx *context) approachFor(p model.Param) string {
	category := cparse.CategorizeType(p.Type)
	normalized := cparse.NormalizeType(p.Type)

	switch category {
	case model.StructPtr:
		if factories := ctx.factories[normalized]; len(factories) > 0 {
			approach := fmt.Sprintf("Use `%s()`", factories[0].Name)
			if len(factories) > 1 {
				approach += " or similar"
			}
			return approach
		}
		if inits := ctx.initializers[normalized]; len(inits) > 0 {
			return fmt.Sprintf("Stack-allocate and call `%s()`", inits[0].Name)
		}
		return "See type definition"
	case model.String:
		return "Allocate a writable buffer and null-terminate"
	case model.Enum:
		return "Pick one of the enumerator values"
	case model.Primitive:
		return "Any representative value"
	case model.FuncPtr:
		return "`NULL` or a stub function"
	}
	return "See type definition"
}

// backingStruct resolves the struct name behind a normalized type,
// following one level of pointer typedef.
func (ctx *context) backingStruct(key string) string {
	if ti, ok := ctx.typeDefs[key]; ok {
		if ti.Category == model.PointerTypedef && ti.PointerTo != "" {
			return ti.PointerTo
		}
	}
	return key
}

// --- auxiliary type identifier extraction ---

// cStoplist holds standard C keywords and types never worth resolving
// as auxiliary types.
var cStoplist = map[string]bool{
	"void": true, "int": true, "char": true, "long": true, "short": true,
	"float": true, "double": true, "unsigned": true, "signed": true,
	"const": true, "struct": true, "enum": true, "union": true,
	"static": true, "extern": true, "inline": true, "volatile": true,
	"register": true, "restrict": true, "typedef": true, "return": true,
	"size_t": true, "ssize_t": true, "ptrdiff_t": true, "bool": true,
	"_Bool": true, "int8_t": true, "int16_t": true, "int32_t": true,
	"int64_t": true, "uint8_t": true, "uint16_t": true, "uint32_t": true,
	"uint64_t": true, "intptr_t": true, "uintptr_t": true, "FILE": true,
	"NULL": true,
}

var auxSuffixes = []string{"_t", "_type", "_bool", "_error", "_state", "_flags"}

var (
	reIdent     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	reTypedPair = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s+\**[A-Za-z_][A-Za-z0-9_]*\s*[,)]`)
)

// auxTypeCandidates extracts identifiers from a signature that look
// like auxiliary type names: either a recognizable type suffix or a
// short identifier directly followed by a parameter name.
func auxTypeCandidates(sig string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(ident string) {
		if ident == "" || cStoplist[ident] || seen[ident] {
			return
		}
		seen[ident] = true
		out = append(out, ident)
	}

	for _, ident := range reIdent.FindAllString(sig, -1) {
		for _, suffix := range auxSuffixes {
			if strings.HasSuffix(ident, suffix) {
				add(ident)
				break
			}
		}
	}

	for _, m := range reTypedPair.FindAllStringSubmatch(sig, -1) {
		ident := m[1]
		if len(ident) <= auxIdentMaxLength && !cStoplist[ident] {
			add(ident)
		}
	}

	return out
}
