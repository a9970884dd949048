package trace

import (
	"bytes"
	"encoding/json"
	"strings"

	errs "github.com/bdlm/errors"
	"github.com/morozRed/crashid/internal/codes"
	"github.com/morozRed/crashid/internal/crashid"
)

// wireThrowable is the JSON shape of one cause.
type wireThrowable struct {
	Type    string          `json:"type"`
	Kind    string          `json:"kind,omitempty"`
	Message string          `json:"message,omitempty"`
	Frames  []crashid.Frame `json:"frames,omitempty"`
	Cause   *wireThrowable  `json:"cause,omitempty"`
}

// wireDocument is a throwable plus optional report metadata.
type wireDocument struct {
	wireThrowable
	Package string `json:"package,omitempty"`
	Thread  string `json:"thread,omitempty"`
}

// JSONFormat parses crash documents serialized as nested JSON causes.
type JSONFormat struct{}

// NewJSONFormat creates the json trace format
func NewJSONFormat() *JSONFormat {
	return &JSONFormat{}
}

func (f *JSONFormat) Name() string {
	return "json"
}

func (f *JSONFormat) Extensions() []string {
	return []string{".json"}
}

func (f *JSONFormat) Detect(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func (f *JSONFormat) Parse(content []byte) (*Trace, error) {
	var doc wireDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errs.Wrap(err, codes.ErrTraceMalformed, "invalid json trace")
	}

	result := &Trace{
		Package: strings.TrimSpace(doc.Package),
		Thread:  doc.Thread,
	}

	var last *crashid.Throwable
	depth := 0
	for wire := &doc.wireThrowable; wire != nil; wire = wire.Cause {
		if depth >= crashid.MaxChainDepth {
			return nil, errs.New(codes.ErrTraceMalformed, "cause chain deeper than %d", crashid.MaxChainDepth)
		}
		cause, err := wire.toThrowable(depth)
		if err != nil {
			return nil, err
		}
		if last == nil {
			result.Throwable = cause
		} else {
			last.Cause = cause
		}
		last = cause
		depth++
	}
	return result, nil
}

func (w *wireThrowable) toThrowable(depth int) (*crashid.Throwable, error) {
	typeName := strings.TrimSpace(w.Type)
	if typeName == "" {
		return nil, errs.New(codes.ErrTraceMalformed, "cause %d: type is required", depth)
	}

	kind := crashid.Classify(typeName)
	if w.Kind != "" {
		parsed, err := crashid.ParseKind(w.Kind)
		if err != nil {
			return nil, errs.Wrap(err, codes.ErrTraceMalformed, "cause %d", depth)
		}
		kind = parsed
	}

	frames := make([]crashid.Frame, 0, len(w.Frames))
	for i, frame := range w.Frames {
		if frame.Class == "" || frame.Method == "" {
			return nil, errs.New(codes.ErrTraceMalformed, "cause %d frame %d: class and method are required", depth, i)
		}
		frames = append(frames, frame)
	}

	return &crashid.Throwable{
		Type:    typeName,
		Kind:    kind,
		Message: w.Message,
		Frames:  frames,
	}, nil
}
