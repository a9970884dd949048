package trace

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/bdlm/errors"
	"github.com/morozRed/crashid/internal/codes"
	"github.com/morozRed/crashid/internal/crashid"
)

var (
	// E/AndroidRuntime( 1234): ...
	briefPrefix = regexp.MustCompile(`^[VDIWEFA]/([^(:]+?)\s*\(\s*\d+\):\s?`)
	// E/AndroidRuntime: ...
	tagPrefix = regexp.MustCompile(`^[VDIWEFA]/([\w.$-]+):\s?`)
	// 03-17 16:13:40.123  1234  1250 E AndroidRuntime: ...
	threadtimePrefix = regexp.MustCompile(`^\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}\.\d{3}\s+\d+\s+\d+\s+[VDIWEFA]\s+([^:]+?)\s*:\s?`)

	headerPattern    = regexp.MustCompile(`^(?:Exception in thread "[^"]*"\s+)?([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)(?::\s?(.*))?$`)
	framePattern     = regexp.MustCompile(`^\s*at\s+(\S+?)\.([^.\s(]+)\(([^)]*)\)`)
	morePattern      = regexp.MustCompile(`^\s*\.\.\.\s+(\d+)\s+more`)
	causedByPattern  = regexp.MustCompile(`^Caused by:\s*(.*)$`)
	suppressedPrefix = regexp.MustCompile(`^\s+Suppressed:\s`)
	fatalPattern     = regexp.MustCompile(`^FATAL EXCEPTION:\s*(.*)$`)
	processPattern   = regexp.MustCompile(`^Process:\s*([\w.]+)`)
	threadPattern    = regexp.MustCompile(`^Exception in thread "([^"]*)"`)
)

// TextFormat parses Java printStackTrace output and Android logcat crash blocks.
type TextFormat struct{}

// NewTextFormat creates the text trace format
func NewTextFormat() *TextFormat {
	return &TextFormat{}
}

func (f *TextFormat) Name() string {
	return "text"
}

func (f *TextFormat) Extensions() []string {
	return []string{".txt", ".log", ".trace", ".stacktrace"}
}

// Detect accepts any non-JSON content; text is the catch-all format.
func (f *TextFormat) Detect(content []byte) bool {
	trimmed := bytes.TrimSpace(content)
	return len(trimmed) > 0 && trimmed[0] != '{'
}

func (f *TextFormat) Parse(content []byte) (*Trace, error) {
	p := &textParser{result: &Trace{}}
	scanner := newLineScanner(content)
	for scanner.Scan() {
		if done := p.consume(scanner.Text()); done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(err, codes.ErrTraceMalformed, "failed to scan trace")
	}
	if p.result.Throwable == nil {
		return nil, errs.New(codes.ErrTraceEmpty, "no exception header found")
	}
	return p.result, nil
}

func newLineScanner(content []byte) *bufio.Scanner {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}

type textParser struct {
	result     *Trace
	current    *crashid.Throwable
	enclosing  *crashid.Throwable
	tag        string
	suppressed bool
}

// consume handles one input line and reports whether the trace has ended.
func (p *textParser) consume(raw string) bool {
	line, tag := stripLogcatPrefix(strings.TrimRight(raw, "\r"))
	if p.current != nil && p.tag != "" && tag != p.tag {
		return false
	}
	if strings.TrimSpace(line) == "" {
		return false
	}

	if p.current == nil {
		return p.consumePreamble(line, tag)
	}

	if p.suppressed {
		if match := causedByPattern.FindStringSubmatch(line); match != nil {
			p.suppressed = false
			return !p.startCause(match[1])
		}
		// Suppressed blocks are indented; anything at column 0 is past the trace.
		return !isIndented(line)
	}

	if match := framePattern.FindStringSubmatch(line); match != nil {
		p.current.Frames = append(p.current.Frames, newFrame(match[1], match[2], match[3]))
		return false
	}
	if match := morePattern.FindStringSubmatch(line); match != nil {
		n, _ := strconv.Atoi(match[1])
		p.restoreCommonFrames(n)
		return false
	}
	if match := causedByPattern.FindStringSubmatch(line); match != nil {
		return !p.startCause(match[1])
	}
	if suppressedPrefix.MatchString(line) {
		p.suppressed = true
		return false
	}
	if len(p.current.Frames) == 0 {
		p.current.Message += "\n" + line
		return false
	}
	return true
}

func (p *textParser) consumePreamble(line, tag string) bool {
	if match := fatalPattern.FindStringSubmatch(line); match != nil {
		p.result.Thread = strings.TrimSpace(match[1])
		return false
	}
	if match := processPattern.FindStringSubmatch(line); match != nil {
		p.result.Package = match[1]
		return false
	}
	if match := threadPattern.FindStringSubmatch(line); match != nil {
		p.result.Thread = match[1]
	}
	throwable, ok := parseHeader(line)
	if !ok {
		return false
	}
	p.result.Throwable = throwable
	p.current = throwable
	p.tag = tag
	return false
}

func (p *textParser) startCause(header string) bool {
	cause, ok := parseHeader(header)
	if !ok {
		return false
	}
	p.enclosing = p.current
	p.current.Cause = cause
	p.current = cause
	return true
}

// restoreCommonFrames appends the n outermost frames of the enclosing
// trace, which printStackTrace elides as "... n more".
func (p *textParser) restoreCommonFrames(n int) {
	if p.enclosing == nil || n <= 0 || n > len(p.enclosing.Frames) {
		return
	}
	common := p.enclosing.Frames[len(p.enclosing.Frames)-n:]
	p.current.Frames = append(p.current.Frames, common...)
}

func stripLogcatPrefix(line string) (string, string) {
	for _, pattern := range []*regexp.Regexp{threadtimePrefix, briefPrefix, tagPrefix} {
		if loc := pattern.FindStringSubmatchIndex(line); loc != nil {
			return line[loc[1]:], strings.TrimSpace(line[loc[2]:loc[3]])
		}
	}
	return line, ""
}

func parseHeader(line string) (*crashid.Throwable, bool) {
	match := headerPattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil || !isThrowableName(match[1]) {
		return nil, false
	}
	return &crashid.Throwable{
		Type:    match[1],
		Kind:    crashid.Classify(match[1]),
		Message: match[2],
	}, true
}

func isThrowableName(name string) bool {
	if strings.Contains(name, ".") {
		return true
	}
	for _, suffix := range []string{"Exception", "Error", "Throwable"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func newFrame(class, method, source string) crashid.Frame {
	frame := crashid.Frame{Class: stripModulePrefix(class), Method: method, File: source}
	if idx := strings.LastIndex(source, ":"); idx >= 0 {
		if line, err := strconv.Atoi(source[idx+1:]); err == nil {
			frame.File = source[:idx]
			frame.Line = line
		}
	}
	return frame
}

// stripModulePrefix drops the class loader and module segments that
// JDK 9+ prints before a class name, as in "app//a.B" or
// "java.base@11.0.2/java.lang.Thread". The "/0x..." suffix of a hidden
// class is part of its name and is kept.
func stripModulePrefix(class string) string {
	suffix := ""
	if i := strings.LastIndex(class, "/0x"); i >= 0 {
		class, suffix = class[:i], class[i:]
	}
	if i := strings.LastIndex(class, "/"); i >= 0 {
		class = class[i+1:]
	}
	return class + suffix
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}
