package cparse

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"chisel/internal/model"
)

// typeSpecifierNodes are the node types that contribute to a return or
// parameter base type.
var typeSpecifierNodes = map[string]bool{
	"primitive_type":       true,
	"type_identifier":      true,
	"sized_type_specifier": true,
	"struct_specifier":     true,
	"enum_specifier":       true,
}

// ExtractFunctions walks the tree and returns every function definition
// and free-standing prototype, at most once per name per file.
func ExtractFunctions(tree *sitter.Tree, filePath string, src []byte) []model.FunctionInfo {
	var functions []model.FunctionInfo
	seen := make(map[string]bool)

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition":
			if fi := extractFunctionInfo(n, filePath, src); fi != nil && !seen[fi.Name] {
				seen[fi.Name] = true
				functions = append(functions, *fi)
			}
		case "declaration":
			// Prototypes expose a function_declarator somewhere below.
			if findDescendantByType(n, "function_declarator") != nil {
				if fi := extractFunctionInfo(n, filePath, src); fi != nil && !seen[fi.Name] {
					seen[fi.Name] = true
					functions = append(functions, *fi)
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	return functions
}

func extractFunctionInfo(n *sitter.Node, filePath string, src []byte) *model.FunctionInfo {
	var declarator *sitter.Node
	var typeSpecifiers []string
	pointerCount := 0

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch {
		case child.Type() == "function_declarator":
			declarator = child
		case typeSpecifierNodes[child.Type()]:
			typeSpecifiers = append(typeSpecifiers, nodeText(child, src))
		case child.Type() == "pointer_declarator":
			// Pointer-returning function: the declarator sits inside and
			// the pointer depth is the run of asterisks before the name.
			inner := findDescendantByType(child, "function_declarator")
			if inner != nil {
				declarator = inner
				pointerCount += leadingStars(nodeText(child, src))
			}
		}
	}

	if declarator == nil {
		return nil
	}

	nameNode := findChildByType(declarator, "identifier")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, src)

	returnType := strings.Join(typeSpecifiers, " ")
	if pointerCount > 0 {
		returnType += " " + strings.Repeat("*", pointerCount)
	}

	var params []model.Param
	if paramsNode := findChildByType(declarator, "parameter_list"); paramsNode != nil {
		params = extractParams(paramsNode, src)
	}

	return &model.FunctionInfo{
		Name:       name,
		ReturnType: strings.TrimSpace(returnType),
		Params:     params,
		FilePath:   filePath,
		LineNumber: int(n.StartPoint().Row) + 1,
		Source:     nodeText(n, src),
		DocComment: leadingComment(n, src),
	}
}

// leadingStars counts the asterisks before the first identifier
// character, which is the pointer depth of the return type.
func leadingStars(s string) int {
	count := 0
	for _, r := range s {
		if r == '*' {
			count++
		} else if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			break
		}
	}
	return count
}

func extractParams(paramsNode *sitter.Node, src []byte) []model.Param {
	var params []model.Param

	for i := 0; i < int(paramsNode.ChildCount()); i++ {
		child := paramsNode.Child(i)
		if child.Type() != "parameter_declaration" {
			continue
		}

		paramText := strings.TrimSpace(nodeText(child, src))
		if paramText == "void" {
			continue
		}

		// The type is every declarator child except the identifier (or
		// the pointer/array subtree holding it).
		var name string
		var typeParts []string
		for j := 0; j < int(child.ChildCount()); j++ {
			part := child.Child(j)
			switch part.Type() {
			case "identifier":
				name = nodeText(part, src)
			case "pointer_declarator":
				// Keep the pointer depth in the type text, drop the name.
				if stars := leadingStars(nodeText(part, src)); stars > 0 {
					typeParts = append(typeParts, strings.Repeat("*", stars))
				}
				if ident := findDescendantByType(part, "identifier"); ident != nil {
					name = nodeText(ident, src)
				}
			case "array_declarator":
				if ident := findDescendantByType(part, "identifier"); ident != nil {
					name = nodeText(ident, src)
				}
			default:
				typeParts = append(typeParts, nodeText(part, src))
			}
		}

		paramType := strings.TrimSpace(strings.Join(typeParts, " "))
		if paramType == "" {
			// Fall back to the whole text minus the matched name.
			if name != "" {
				if idx := strings.LastIndex(paramText, name); idx >= 0 {
					paramType = strings.TrimSpace(paramText[:idx])
				}
			}
			if paramType == "" {
				paramType = paramText
			}
		}

		if paramType == "" || paramType == "void" {
			continue
		}
		if name == "" {
			name = fmt.Sprintf("arg%d", len(params))
		}
		params = append(params, model.Param{Type: paramType, Name: name})
	}

	return params
}
