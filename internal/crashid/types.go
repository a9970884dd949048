package crashid

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutOfMemoryType is the type reported for every out-of-memory crash.
const OutOfMemoryType = "java.lang.OutOfMemoryError"

// Kind tags the concrete error type of a cause.
type Kind int

const (
	KindUnknown Kind = iota
	KindChecked
	KindRuntime
	KindError
	KindOutOfMemory
)

func (k Kind) String() string {
	switch k {
	case KindChecked:
		return "checked"
	case KindRuntime:
		return "runtime"
	case KindError:
		return "error"
	case KindOutOfMemory:
		return "oom"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. It also accepts a few aliases.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "unknown":
		return KindUnknown, nil
	case "checked", "exception":
		return KindChecked, nil
	case "runtime", "unchecked":
		return KindRuntime, nil
	case "error":
		return KindError, nil
	case "oom", "outofmemory", "out-of-memory":
		return KindOutOfMemory, nil
	default:
		return KindUnknown, fmt.Errorf("unknown kind %q (supported: checked, runtime, error, oom)", value)
	}
}

// Frame is one stack trace entry. Line is kept for display only.
type Frame struct {
	Class  string `json:"class"`
	Method string `json:"method"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// Name returns "Class.Method".
func (f Frame) Name() string {
	return f.Class + "." + f.Method
}

// Throwable is one cause in a crash chain. Cause points at the error
// that led to this one.
type Throwable struct {
	Type    string     `json:"type"`
	Kind    Kind       `json:"-"`
	Message string     `json:"message,omitempty"`
	Frames  []Frame    `json:"frames,omitempty"`
	Cause   *Throwable `json:"cause,omitempty"`
}

// Identifier groups crashes that share a type and origin.
// An empty Location stands for "no location".
type Identifier struct {
	Type     string
	Location string
}

// HasLocation reports whether an origin frame was determined.
func (id Identifier) HasLocation() bool {
	return id.Location != ""
}

func (id Identifier) String() string {
	if !id.HasLocation() {
		return id.Type
	}
	return id.Type + "@" + id.Location
}

func (id Identifier) MarshalJSON() ([]byte, error) {
	wire := struct {
		Type     string  `json:"type"`
		Location *string `json:"location"`
		Key      string  `json:"key"`
	}{Type: id.Type, Key: id.Key()}
	if id.HasLocation() {
		location := id.Location
		wire.Location = &location
	}
	return json.Marshal(wire)
}

func (id *Identifier) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type     string  `json:"type"`
		Location *string `json:"location"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	id.Type = wire.Type
	id.Location = ""
	if wire.Location != nil {
		id.Location = *wire.Location
	}
	return nil
}
