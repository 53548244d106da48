package model

// Category classifies a C type string for construction purposes.
type Category int

const (
	Primitive Category = iota
	String
	FuncPtr
	Enum
	StructPtr
	PointerTypedef
)

var categoryNames = map[Category]string{
	Primitive:      "primitive",
	String:         "string",
	FuncPtr:        "func_ptr",
	Enum:           "enum",
	StructPtr:      "struct_ptr",
	PointerTypedef: "pointer_typedef",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "primitive"
}

// ParseCategory maps a stored category string back to its Category.
// Unknown strings fall back to Primitive.
func ParseCategory(s string) Category {
	for c, name := range categoryNames {
		if name == s {
			return c
		}
	}
	return Primitive
}

// Param is a single function parameter: the raw declarator type text and
// the parameter name (synthesized as argN when anonymous).
type Param struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FunctionInfo is one extracted function row. The same function name may
// appear once per file: a header prototype and a .c definition are two
// distinct rows, merged at lookup time (see Merge).
type FunctionInfo struct {
	Name       string
	ReturnType string
	Params     []Param
	FilePath   string
	LineNumber int
	Source     string
	DocComment string
}

// HasBody reports whether the stored source carries a function body
// rather than just a prototype.
func (f *FunctionInfo) HasBody() bool {
	for i := 0; i < len(f.Source); i++ {
		if f.Source[i] == '{' {
			return true
		}
	}
	return false
}

// TypeInfo is one extracted type definition, keyed globally by bare name.
type TypeInfo struct {
	Name       string
	Category   Category
	EnumValues []string
	FilePath   string
	Source     string
	// PointerTo holds the underlying struct name for the
	// "typedef struct X { ... } *Name;" idiom.
	PointerTo string
}

// Merge applies the row-precedence rule for a function name that appears
// in multiple files: prefer the row whose source contains a body,
// borrowing a doc comment from any sibling row if that row has none;
// fall back to any documented row, then to the first row. Returns nil
// for an empty input.
func Merge(rows []FunctionInfo) *FunctionInfo {
	if len(rows) == 0 {
		return nil
	}

	var withBody, withDoc *FunctionInfo
	for i := range rows {
		if withBody == nil && rows[i].HasBody() {
			withBody = &rows[i]
		}
		if withDoc == nil && rows[i].DocComment != "" {
			withDoc = &rows[i]
		}
	}

	if withBody != nil {
		merged := *withBody
		if merged.DocComment == "" && withDoc != nil {
			merged.DocComment = withDoc.DocComment
		}
		return &merged
	}
	if withDoc != nil {
		merged := *withDoc
		return &merged
	}
	merged := rows[0]
	return &merged
}
