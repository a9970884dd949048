package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	errs "github.com/bdlm/errors"
	"github.com/bdlm/log"
	"github.com/morozRed/crashid/internal/bucket"
	"github.com/morozRed/crashid/internal/codes"
	"github.com/morozRed/crashid/internal/crashid"
	"github.com/morozRed/crashid/internal/fileutil"
	"github.com/morozRed/crashid/internal/ignore"
	"github.com/morozRed/crashid/internal/trace"
	"github.com/spf13/cobra"
)

type GroupSummary struct {
	Files      int            `json:"files"`
	Duplicates int            `json:"duplicates,omitempty"`
	Failed     []string       `json:"failed,omitempty"`
	Total      int            `json:"total"`
	Store      string         `json:"store,omitempty"`
	Saved      bool           `json:"saved"`
	Buckets    []bucket.Entry `json:"buckets"`
}

func RunGroup(cmd *cobra.Command, args []string) error {
	settings, err := LoadSettings(cmd)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	asJSONL, err := OptionalBoolFlag(cmd, "jsonl")
	if err != nil {
		return err
	}
	save, err := OptionalBoolFlag(cmd, "save")
	if err != nil {
		return err
	}
	storePath, err := OptionalStringFlag(cmd, "store")
	if err != nil {
		return err
	}
	if storePath == "" {
		storePath = settings.Config.Store
	}
	if !filepath.IsAbs(storePath) {
		storePath = filepath.Join(settings.RootPath, storePath)
	}

	registry := trace.NewDefaultRegistry()
	if settings.Format != "" {
		if _, ok := registry.Lookup(settings.Format); !ok {
			return errs.New(codes.ErrUnknownFormat, "unsupported format %q (supported: %s)", settings.Format, strings.Join(registry.Names(), ", "))
		}
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := collectTraceFiles(args, registry, ignore.NewMatcher(settings.IgnoreRules))
	if err != nil {
		return err
	}

	store := bucket.NewStore()
	if save {
		store, err = bucket.Load(storePath)
		if err != nil {
			return fmt.Errorf("failed to load bucket store: %w", err)
		}
	}

	computer := crashid.NewComputer(settings.Skip)
	progress := newGroupProgress(len(files), asJSON || asJSONL)
	summary := GroupSummary{Files: len(files)}
	for _, file := range files {
		// The same report is often collected more than once, in this run or
		// an earlier saved one.
		hash, err := fileutil.HashFile(file.path)
		if err == nil {
			if first, ok := store.Recorded(hash); ok {
				log.WithField("path", file.sample).Debugf("duplicate of %s", first)
				summary.Duplicates++
				progress.Duplicate()
				continue
			}
		}
		parsed, err := registry.ParseFile(file.path, settings.Format)
		if err != nil {
			log.WithField("path", file.sample).Warnf("%v", err)
			summary.Failed = append(summary.Failed, file.sample)
			progress.Failed()
			continue
		}
		id := computer.Compute(settings.ResolvePackage(parsed.Package), parsed.Throwable)
		store.Record(id, file.sample, file.modTime)
		store.MarkRecorded(hash, file.sample)
		progress.Read()
	}
	progress.Finish()

	if save {
		changed, err := store.Save(storePath)
		if err != nil {
			return fmt.Errorf("failed to save bucket store: %w", err)
		}
		summary.Store = storePath
		summary.Saved = changed
		log.WithField("store", storePath).Debugf("store changed: %t", changed)
	}

	summary.Total = store.Total()
	summary.Buckets = store.Sorted()

	out := cmd.OutOrStdout()
	switch {
	case asJSONL:
		if err := fileutil.WriteJSONL(out, summary.Buckets); err != nil {
			return fmt.Errorf("failed to encode buckets: %w", err)
		}
		return nil
	case asJSON:
		return fileutil.PrintJSON(out, summary)
	default:
		return printGroupTable(out, summary)
	}
}

type traceFile struct {
	path    string
	sample  string
	modTime time.Time
}

// collectTraceFiles expands args into trace files. Files named directly
// are always read; directories contribute files with a trace extension.
func collectTraceFiles(args []string, registry *trace.Registry, matcher *ignore.Matcher) ([]traceFile, error) {
	seen := make(map[string]bool)
	files := make([]traceFile, 0)
	add := func(path string, info os.FileInfo) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		files = append(files, traceFile{
			path:    clean,
			sample:  filepath.ToSlash(clean),
			modTime: info.ModTime().UTC(),
		})
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg, info)
			continue
		}

		root := arg
		err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				log.WithField("path", path).Warnf("walk error: %v", walkErr)
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if matcher.ShouldIgnore(relPath, info.IsDir()) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if _, ok := registry.GetFormatForFile(path); ok {
				add(path, info)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].sample < files[j].sample })
	return files, nil
}

func printGroupTable(w io.Writer, summary GroupSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNT\tTYPE\tLOCATION\tKEY")
	for _, entry := range summary.Buckets {
		location := entry.Location
		if location == "" {
			location = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", entry.Count, entry.Type, location, entry.Key)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d crashes in %d buckets", summary.Total, len(summary.Buckets))
	if err != nil {
		return err
	}
	if summary.Duplicates > 0 {
		fmt.Fprintf(w, " (%d duplicate files)", summary.Duplicates)
	}
	if len(summary.Failed) > 0 {
		fmt.Fprintf(w, " (%d files unreadable)", len(summary.Failed))
	}
	if summary.Store != "" {
		fmt.Fprintf(w, "\nstore: %s", summary.Store)
	}
	_, err = fmt.Fprintln(w)
	return err
}
