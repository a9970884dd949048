package languages

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// JavaParser implements parsing for Java source files
type JavaParser struct {
	parser *sitter.Parser
}

// NewJavaParser creates a new Java parser
func NewJavaParser() *JavaParser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &JavaParser{parser: p}
}

func (j *JavaParser) Language() string {
	return "java"
}

func (j *JavaParser) Extensions() []string {
	return []string{".java"}
}

func (j *JavaParser) Parse(filename string, content []byte) (*SourceFile, error) {
	tree, err := j.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &SourceFile{
		Path:     filename,
		Language: "java",
		Types:    make([]string, 0),
	}

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			result.Package = j.extractPackage(child, content)
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				result.Types = append(result.Types, nameNode.Content(content))
			}
		}
	}

	return result, nil
}

func (j *JavaParser) extractPackage(node *sitter.Node, content []byte) string {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "scoped_identifier", "identifier":
			return strings.Join(strings.Fields(child.Content(content)), "")
		}
	}
	return ""
}
