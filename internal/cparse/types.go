package cparse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"chisel/internal/model"
)

// ExtractTypes walks the tree and returns struct, enum, and typedef
// definitions, at most once per name per file. Forward declarations
// without a body are not recorded.
func ExtractTypes(tree *sitter.Tree, filePath string, src []byte) []model.TypeInfo {
	var types []model.TypeInfo
	seen := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "struct_specifier", "enum_specifier", "type_definition":
			if ti := extractTypeInfo(n, filePath, src); ti != nil && !seen[ti.Name] {
				seen[ti.Name] = true
				types = append(types, *ti)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	return types
}

func extractTypeInfo(n *sitter.Node, filePath string, src []byte) *model.TypeInfo {
	switch n.Type() {
	case "struct_specifier":
		nameNode := findChildByType(n, "type_identifier")
		if nameNode == nil {
			return nil
		}
		// A field list distinguishes a definition from a forward
		// declaration.
		if findChildByType(n, "field_declaration_list") == nil {
			return nil
		}
		return &model.TypeInfo{
			Name:     nodeText(nameNode, src),
			Category: model.StructPtr,
			FilePath: filePath,
			Source:   nodeText(n, src),
		}

	case "enum_specifier":
		nameNode := findChildByType(n, "type_identifier")
		if nameNode == nil {
			return nil
		}
		var enumValues []string
		if body := findChildByType(n, "enumerator_list"); body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				enumerator := body.Child(i)
				if enumerator.Type() != "enumerator" {
					continue
				}
				if ident := findChildByType(enumerator, "identifier"); ident != nil {
					enumValues = append(enumValues, nodeText(ident, src))
				}
			}
		}
		return &model.TypeInfo{
			Name:       nodeText(nameNode, src),
			Category:   model.Enum,
			EnumValues: enumValues,
			FilePath:   filePath,
			Source:     nodeText(n, src),
		}

	case "type_definition":
		return extractTypedef(n, filePath, src)
	}

	return nil
}

func extractTypedef(n *sitter.Node, filePath string, src []byte) *model.TypeInfo {
	pointerDeclarator := findChildByType(n, "pointer_declarator")
	structSpecifier := findChildByType(n, "struct_specifier")

	// Pointer typedef idiom: typedef struct X { ... } *Name;
	if pointerDeclarator != nil && structSpecifier != nil {
		typedefName := findDescendantByType(pointerDeclarator, "type_identifier")
		if typedefName != nil {
			structName := findChildByType(structSpecifier, "type_identifier")
			return &model.TypeInfo{
				Name:      nodeText(typedefName, src),
				Category:  model.PointerTypedef,
				FilePath:  filePath,
				Source:    nodeText(n, src),
				PointerTo: nodeText(structName, src),
			}
		}
	}

	nameNode := findChildByType(n, "type_identifier")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, src)

	// Categorize by the underlying type when one is present.
	underlying := ""
	pointerTo := ""
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if typeSpecifierNodes[child.Type()] {
			underlying = nodeText(child, src)
			if child.Type() == "struct_specifier" {
				if structName := findChildByType(child, "type_identifier"); structName != nil {
					pointerTo = nodeText(structName, src)
				}
			}
			break
		}
	}

	category := model.Primitive
	if underlying != "" {
		category = CategorizeType(underlying)
	}

	return &model.TypeInfo{
		Name:      name,
		Category:  category,
		FilePath:  filePath,
		Source:    nodeText(n, src),
		PointerTo: pointerTo,
	}
}
