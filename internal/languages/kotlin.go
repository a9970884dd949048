package languages

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"
)

// KotlinParser implements parsing for Kotlin source files
type KotlinParser struct {
	parser *sitter.Parser
}

// NewKotlinParser creates a new Kotlin parser
func NewKotlinParser() *KotlinParser {
	p := sitter.NewParser()
	p.SetLanguage(kotlin.GetLanguage())
	return &KotlinParser{parser: p}
}

func (k *KotlinParser) Language() string {
	return "kotlin"
}

func (k *KotlinParser) Extensions() []string {
	return []string{".kt"}
}

// Parse only reads the package header; Kotlin top-level functions compile
// into synthetic *Kt classes, so declared type names are not collected.
func (k *KotlinParser) Parse(filename string, content []byte) (*SourceFile, error) {
	tree, err := k.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	result := &SourceFile{
		Path:     filename,
		Language: "kotlin",
	}

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "package_header" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			ident := child.NamedChild(j)
			if ident.Type() == "identifier" {
				result.Package = strings.Join(strings.Fields(ident.Content(content)), "")
				break
			}
		}
		break
	}

	return result, nil
}
