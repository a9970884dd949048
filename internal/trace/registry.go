package trace

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	errs "github.com/bdlm/errors"
	"github.com/morozRed/crashid/internal/codes"
)

// Format defines the interface each trace format must implement
type Format interface {
	// Name returns the format name (e.g., "text", "json")
	Name() string

	// Extensions returns file extensions this format handles
	Extensions() []string

	// Detect reports whether content looks like this format
	Detect(content []byte) bool

	// Parse builds the cause chain from content
	Parse(content []byte) (*Trace, error)
}

// Registry holds all registered trace formats
type Registry struct {
	formats     map[string]Format // format name -> format
	extToFormat map[string]string // extension -> format name
	order       []string          // detection order
}

// NewRegistry creates a new format registry
func NewRegistry() *Registry {
	return &Registry{
		formats:     make(map[string]Format),
		extToFormat: make(map[string]string),
	}
}

// NewDefaultRegistry returns a registry with the json and text formats.
// JSON is sniffed first since text accepts almost anything.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewJSONFormat())
	r.Register(NewTextFormat())
	return r
}

// Register adds a format to the registry
func (r *Registry) Register(f Format) {
	name := f.Name()
	if _, exists := r.formats[name]; !exists {
		r.order = append(r.order, name)
	}
	r.formats[name] = f
	for _, ext := range f.Extensions() {
		r.extToFormat[ext] = name
	}
}

// Lookup returns the format registered under name.
func (r *Registry) Lookup(name string) (Format, bool) {
	f, ok := r.formats[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Names returns the registered format names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetFormatForFile returns the format that claims the file extension,
// looking through a compression suffix.
func (r *Registry) GetFormatForFile(filename string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(formatName(filename)))
	name, ok := r.extToFormat[ext]
	if !ok {
		return nil, false
	}
	f, ok := r.formats[name]
	return f, ok
}

// Detect returns the first format, in registration order, that accepts content.
func (r *Registry) Detect(content []byte) (Format, bool) {
	for _, name := range r.order {
		if f := r.formats[name]; f.Detect(content) {
			return f, true
		}
	}
	return nil, false
}

// Parse parses content with the named format, or a detected one when
// name is empty.
func (r *Registry) Parse(name string, content []byte) (*Trace, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, errs.New(codes.ErrTraceEmpty, "input is empty")
	}

	var (
		f  Format
		ok bool
	)
	if name != "" {
		f, ok = r.Lookup(name)
		if !ok {
			return nil, errs.New(codes.ErrUnknownFormat, "unsupported format %q (supported: %s)", name, strings.Join(r.Names(), ", "))
		}
	} else {
		f, ok = r.Detect(content)
		if !ok {
			return nil, errs.New(codes.ErrUnknownFormat, "no trace format matched the input")
		}
	}
	return f.Parse(content)
}

// ParseFile reads and parses a single file. The format is taken from name,
// then the file extension, then content detection.
func (r *Registry) ParseFile(path, name string) (*Trace, error) {
	content, err := readTraceFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if name == "" {
		if f, ok := r.GetFormatForFile(path); ok && f.Detect(content) {
			name = f.Name()
		}
	}
	parsed, err := r.Parse(name, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return parsed, nil
}
