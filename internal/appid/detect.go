// Package appid finds the application package of an Android or JVM source
// tree, for callers that do not pass one explicitly.
package appid

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errs "github.com/bdlm/errors"
	"github.com/bdlm/log"
	"github.com/morozRed/crashid/internal/codes"
	"github.com/morozRed/crashid/internal/fileutil"
	"github.com/morozRed/crashid/internal/ignore"
	"github.com/morozRed/crashid/internal/languages"
)

// Source values for Result.Source.
const (
	SourceManifest = "manifest"
	SourceCode     = "sources"
)

// Result describes a detected application package.
type Result struct {
	Package  string   `json:"package"`
	Source   string   `json:"source"`
	Evidence string   `json:"evidence,omitempty"`
	Packages []string `json:"packages,omitempty"`
	Files    int      `json:"files"`
	Types    int      `json:"types"`
}

// Detect walks root and returns the application package. A manifest
// package attribute wins; otherwise the longest common prefix of all
// declared source packages is used.
func Detect(root string, ignoreRules []string) (*Result, error) {
	registry := languages.NewDefaultRegistry()
	matcher := ignore.NewMatcher(ignoreRules)

	manifests := make([]string, 0)
	packages := make(map[string]bool)
	result := &Result{}

	err := filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
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

		if info.Name() == languages.ManifestFile {
			manifests = append(manifests, relPath)
			return nil
		}

		file, err := registry.ParseFile(path)
		if err != nil {
			log.WithField("path", relPath).Warnf("failed to parse source: %v", err)
			return nil
		}
		if file == nil {
			return nil
		}
		result.Files++
		result.Types += len(file.Types)
		if file.Package != "" {
			packages[file.Package] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	result.Packages = fileutil.SortedKeys(packages)

	sort.Strings(manifests)
	for _, rel := range manifests {
		pkg, err := languages.ReadManifestPackage(filepath.Join(root, rel))
		if err != nil {
			log.WithField("path", rel).Warnf("%v", err)
			continue
		}
		if pkg != "" {
			result.Package = pkg
			result.Source = SourceManifest
			result.Evidence = filepath.ToSlash(rel)
			return result, nil
		}
	}

	if pkg := CommonPackage(result.Packages); pkg != "" {
		result.Package = pkg
		result.Source = SourceCode
		result.Evidence = fmt.Sprintf("%d package(s) in %d file(s)", len(result.Packages), result.Files)
		return result, nil
	}

	return nil, errs.New(codes.ErrPackageNotFound, "no application package found under %s", root)
}

// CommonPackage returns the longest dotted prefix shared by all packages.
// When the packages share nothing, the most populated two-segment root
// is used instead so one stray library package does not erase the answer.
func CommonPackage(packages []string) string {
	if len(packages) == 0 {
		return ""
	}

	common := strings.Split(packages[0], ".")
	for _, pkg := range packages[1:] {
		parts := strings.Split(pkg, ".")
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) >= 2 || (len(common) == 1 && len(packages) == 1) {
		return strings.Join(common, ".")
	}

	counts := make(map[string]int)
	for _, pkg := range packages {
		parts := strings.Split(pkg, ".")
		if len(parts) > 2 {
			parts = parts[:2]
		}
		counts[strings.Join(parts, ".")]++
	}
	best, bestCount := "", 0
	for _, root := range fileutil.SortedKeys(counts) {
		if counts[root] > bestCount {
			best, bestCount = root, counts[root]
		}
	}
	return best
}
