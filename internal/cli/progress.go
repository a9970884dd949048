package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const progressInterval = 100 * time.Millisecond

// groupTally counts what happened to each trace file in one group run.
type groupTally struct {
	Total      int
	Read       int
	Duplicates int
	Failed     int
}

func (t groupTally) done() int {
	return t.Read + t.Duplicates + t.Failed
}

// line renders the tally as "12/40 read, 3 duplicate, 1 unreadable".
func (t groupTally) line() string {
	parts := []string{fmt.Sprintf("%d/%d read", t.Read, t.Total)}
	if t.Duplicates > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicate", t.Duplicates))
	}
	if t.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", t.Failed))
	}
	return strings.Join(parts, ", ")
}

// groupProgress redraws a tally line on a terminal while traces are
// bucketed. Redraws are throttled; the final line is always written.
type groupProgress struct {
	out     io.Writer
	enabled bool
	tally   groupTally
	start   time.Time
	drawn   time.Time
	width   int
}

func newGroupProgress(total int, quiet bool) *groupProgress {
	stat, err := os.Stderr.Stat()
	tty := err == nil && (stat.Mode()&os.ModeCharDevice) != 0
	return &groupProgress{
		out:     os.Stderr,
		enabled: tty && !quiet,
		tally:   groupTally{Total: total},
		start:   time.Now(),
	}
}

func (p *groupProgress) Read()      { p.tally.Read++; p.redraw(false) }
func (p *groupProgress) Duplicate() { p.tally.Duplicates++; p.redraw(false) }
func (p *groupProgress) Failed()    { p.tally.Failed++; p.redraw(false) }

func (p *groupProgress) Finish() {
	p.redraw(true)
	if p.enabled {
		fmt.Fprintln(p.out)
	}
}

func (p *groupProgress) redraw(final bool) {
	if !p.enabled {
		return
	}
	now := time.Now()
	if !final && now.Sub(p.drawn) < progressInterval && p.tally.done() < p.tally.Total {
		return
	}
	p.drawn = now
	status := "grouping " + p.tally.line()
	if final {
		status += fmt.Sprintf(" in %s", now.Sub(p.start).Round(time.Millisecond))
	}
	if pad := p.width - len(status); pad > 0 {
		status += strings.Repeat(" ", pad)
	}
	p.width = len(status)
	fmt.Fprintf(p.out, "\r%s", status)
}
