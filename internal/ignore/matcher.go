package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileName is the per-project ignore file.
const FileName = ".crashidignore"

// DefaultRules skip VCS metadata, IDE state and build outputs, which hold
// generated sources and copies of merged manifests.
var DefaultRules = []string{
	".git/",
	".gradle/",
	".idea/",
	".crashid/",
	"build/",
	"out/",
	"node_modules/",
}

type rule struct {
	glob     *regexp.Regexp
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
	nested   bool // pattern contains a slash
}

// Matcher applies gitignore-like rules with "last rule wins" behavior.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from user rules, after DefaultRules. User
// negations can re-include defaults.
func NewMatcher(userRules []string) *Matcher {
	m := &Matcher{rules: make([]rule, 0, len(DefaultRules)+len(userRules))}
	for _, line := range append(append([]string{}, DefaultRules...), userRules...) {
		if parsed, ok := parseRule(line); ok {
			m.rules = append(m.rules, parsed)
		}
	}
	return m
}

// LoadRules reads rule lines from the ignore file in root. A missing file
// yields no rules.
func LoadRules(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}
	defer f.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return rules, nil
}

// ShouldIgnore returns true when relPath should be excluded.
func (m *Matcher) ShouldIgnore(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	if relPath == "" || relPath == "." {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if r.matches(relPath, isDir) {
			ignored = !r.negated
		}
	}
	return ignored
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		r.negated = true
		line = rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		r.anchored = true
		line = rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		r.dirOnly = true
		line = rest
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	r.pattern = line
	r.nested = strings.Contains(line, "/")
	r.glob = regexp.MustCompile("^" + globToRegex(line) + "$")
	return r, true
}

func (r rule) matches(relPath string, isDir bool) bool {
	segments := strings.Split(relPath, "/")

	if r.dirOnly {
		// Any ancestor directory, or the path itself when it is a directory.
		limit := len(segments) - 1
		if isDir {
			limit = len(segments)
		}
		for i := 1; i <= limit; i++ {
			if r.matchPrefix(segments[:i]) {
				return true
			}
		}
		return false
	}

	if r.anchored {
		return r.glob.MatchString(relPath)
	}
	if r.nested {
		for i := range segments {
			if r.glob.MatchString(strings.Join(segments[i:], "/")) {
				return true
			}
		}
		return false
	}
	for _, segment := range segments {
		if r.glob.MatchString(segment) {
			return true
		}
	}
	return false
}

// matchPrefix checks a directory given as path segments.
func (r rule) matchPrefix(dir []string) bool {
	if r.anchored {
		return r.glob.MatchString(strings.Join(dir, "/"))
	}
	if r.nested {
		for i := range dir {
			if r.glob.MatchString(strings.Join(dir[i:], "/")) {
				return true
			}
		}
		return false
	}
	return r.glob.MatchString(dir[len(dir)-1])
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i++
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
