package crashid

// ActivityThreadClass is the framework class whose RuntimeExceptions only
// name the failing application component in their message.
const ActivityThreadClass = "android.app.ActivityThread"

// MaxChainDepth bounds the cause walk.
const MaxChainDepth = 256

// Computer derives crash identifiers using a fixed skip-list.
type Computer struct {
	Skip SkipList
}

// NewComputer returns a Computer using skip, or DefaultSkipList when skip
// is empty.
func NewComputer(skip SkipList) *Computer {
	if len(skip) == 0 {
		skip = DefaultSkipList
	}
	return &Computer{Skip: skip}
}

// Compute derives the identifier of t with DefaultSkipList.
func Compute(appPackage string, t *Throwable) Identifier {
	return Computer{Skip: DefaultSkipList}.Compute(appPackage, t)
}

// Compute walks the cause chain of t looking for the crash origin.
//
// Any out-of-memory cause collapses the crash into a single bucket with no
// location. Otherwise the first frame outside the skip-list, searched cause
// by cause, is the origin. When none exists the ActivityThread message
// fallback is tried, then the first top-level frame is used as is.
// The reported type is always the top-level type except for out-of-memory.
func (c Computer) Compute(appPackage string, t *Throwable) Identifier {
	if t == nil {
		return Identifier{}
	}

	seen := make(map[*Throwable]bool)
	for cause, depth := t, 0; cause != nil && !seen[cause] && depth < MaxChainDepth; cause, depth = cause.Cause, depth+1 {
		seen[cause] = true
		if kindOf(cause) == KindOutOfMemory {
			return Identifier{Type: OutOfMemoryType}
		}
		for _, frame := range cause.Frames {
			if !c.Skip.Contains(frame.Class) {
				return Identifier{Type: t.Type, Location: frame.Name()}
			}
		}
	}

	if len(t.Frames) == 0 {
		return Identifier{Type: t.Type}
	}

	first := t.Frames[0]
	if kindOf(t) == KindRuntime && first.Class == ActivityThreadClass {
		if component, ok := ExtractComponent(appPackage, t.Message); ok {
			return Identifier{Type: t.Type, Location: component + "." + first.Method}
		}
	}

	return Identifier{Type: t.Type, Location: first.Name()}
}

// kindOf returns t.Kind, classifying the type name when no kind was set.
func kindOf(t *Throwable) Kind {
	if t.Kind == KindUnknown {
		return Classify(t.Type)
	}
	return t.Kind
}
