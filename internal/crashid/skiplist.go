package crashid

import "strings"

// SkipList holds package prefixes whose frames are never a crash origin.
type SkipList []string

// DefaultSkipList covers Android framework and reflection frames.
var DefaultSkipList = SkipList{
	"android",
	"com.android",
	"dalvik",
	"java.lang.reflect",
}

// Contains reports whether className lives under one of the prefixes.
func (s SkipList) Contains(className string) bool {
	for _, prefix := range s {
		if strings.HasPrefix(className, prefix+".") {
			return true
		}
	}
	return false
}

// With returns a copy extended by extra prefixes. Blank and duplicate
// entries are dropped; order is preserved.
func (s SkipList) With(extra ...string) SkipList {
	seen := make(map[string]bool, len(s)+len(extra))
	out := make(SkipList, 0, len(s)+len(extra))
	for _, prefix := range append(append([]string{}, s...), extra...) {
		prefix = strings.Trim(strings.TrimSpace(prefix), ".")
		if prefix == "" || seen[prefix] {
			continue
		}
		seen[prefix] = true
		out = append(out, prefix)
	}
	return out
}
