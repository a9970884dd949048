package languages

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceFile holds what crash grouping needs from one source file.
type SourceFile struct {
	Path     string
	Language string
	Package  string
	Types    []string // top-level type names, unqualified
}

// QualifiedTypes returns Types prefixed with the file's package.
func (f *SourceFile) QualifiedTypes() []string {
	out := make([]string, 0, len(f.Types))
	for _, name := range f.Types {
		if f.Package == "" {
			out = append(out, name)
			continue
		}
		out = append(out, f.Package+"."+name)
	}
	return out
}

// SourceParser defines the interface each language must implement
type SourceParser interface {
	// Language returns the language name (e.g., "java", "kotlin")
	Language() string

	// Extensions returns file extensions this parser handles
	Extensions() []string

	// Parse extracts the package declaration from source code
	Parse(filename string, content []byte) (*SourceFile, error)
}

// Registry holds all registered language parsers
type Registry struct {
	parsers   map[string]SourceParser // language name -> parser
	extToLang map[string]string       // extension -> language name
}

// NewRegistry creates a new parser registry
func NewRegistry() *Registry {
	return &Registry{
		parsers:   make(map[string]SourceParser),
		extToLang: make(map[string]string),
	}
}

// NewDefaultRegistry creates a registry with all supported language parsers
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(NewJavaParser())
	r.Register(NewKotlinParser())

	return r
}

// Register adds a language parser to the registry
func (r *Registry) Register(p SourceParser) {
	lang := p.Language()
	r.parsers[lang] = p
	for _, ext := range p.Extensions() {
		r.extToLang[ext] = lang
	}
}

// GetParserForFile returns the appropriate parser for a file
func (r *Registry) GetParserForFile(filename string) (SourceParser, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	lang, ok := r.extToLang[ext]
	if !ok {
		return nil, false
	}
	parser, ok := r.parsers[lang]
	return parser, ok
}

// SupportedExtensions returns all supported file extensions, sorted
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.extToLang))
	for ext := range r.extToLang {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ParseFile parses a single file. Unsupported files return nil, nil.
func (r *Registry) ParseFile(path string) (*SourceFile, error) {
	parser, ok := r.GetParserForFile(path)
	if !ok {
		return nil, nil // unsupported file type, skip silently
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parser.Parse(path, content)
}
