package trace

import "github.com/morozRed/crashid/internal/crashid"

// Trace is a parsed crash report.
type Trace struct {
	Throwable *crashid.Throwable
	// Package is the application package named by the report itself, such
	// as the "Process:" line of a logcat crash block. Empty when unknown.
	Package string
	// Thread is the crashing thread name, when the report names one.
	Thread string
}

// Depth returns the number of causes in the chain.
func (t *Trace) Depth() int {
	depth := 0
	for cause := t.Throwable; cause != nil && depth < crashid.MaxChainDepth; cause = cause.Cause {
		depth++
	}
	return depth
}
