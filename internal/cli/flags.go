package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/bdlm/log"
	"github.com/morozRed/crashid/internal/appid"
	"github.com/morozRed/crashid/internal/config"
	"github.com/morozRed/crashid/internal/crashid"
	"github.com/morozRed/crashid/internal/ignore"
	"github.com/spf13/cobra"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func OptionalBoolFlag(cmd *cobra.Command, name string) (bool, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return false, nil
	}
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

// Settings is the effective configuration of one command run: config
// file values overridden by flags.
type Settings struct {
	RootPath    string
	Config      *config.Config
	Package     string
	Source      string
	Format      string
	Skip        crashid.SkipList
	IgnoreRules []string
}

func LoadSettings(cmd *cobra.Command) (*Settings, error) {
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return nil, err
	}

	configPath, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath, false)
	} else {
		cfg, err = config.Load(rootPath)
	}
	if err != nil {
		return nil, err
	}

	s := &Settings{
		RootPath: rootPath,
		Config:   cfg,
		Package:  cfg.Package,
		Source:   cfg.Source,
	}

	if pkg, err := OptionalStringFlag(cmd, "package"); err != nil {
		return nil, err
	} else if pkg != "" {
		s.Package = pkg
	}
	if source, err := OptionalStringFlag(cmd, "source"); err != nil {
		return nil, err
	} else if source != "" {
		s.Source = source
	}
	if s.Format, err = OptionalStringFlag(cmd, "format"); err != nil {
		return nil, err
	}

	s.Skip, err = parseSkipList(cmd, cfg)
	if err != nil {
		return nil, err
	}

	fileRules, err := ignore.LoadRules(rootPath)
	if err != nil {
		return nil, err
	}
	s.IgnoreRules = append(fileRules, cfg.Ignore...)

	return s, nil
}

func parseSkipList(cmd *cobra.Command, cfg *config.Config) (crashid.SkipList, error) {
	skip := cfg.SkipList()
	if cmd == nil || cmd.Flags().Lookup("skip") == nil {
		return skip, nil
	}

	extra, err := cmd.Flags().GetStringSlice("skip")
	if err != nil {
		return nil, fmt.Errorf("failed to read --skip flag: %w", err)
	}
	replace, err := OptionalBoolFlag(cmd, "no-default-skip")
	if err != nil {
		return nil, err
	}
	if replace {
		if len(extra) == 0 {
			return nil, fmt.Errorf("--no-default-skip requires at least one --skip prefix")
		}
		return crashid.SkipList(nil).With(extra...), nil
	}
	return skip.With(extra...), nil
}

// ResolvePackage picks the application package for a trace: explicit
// settings first, then source detection, then the trace's own header.
func (s *Settings) ResolvePackage(tracePackage string) string {
	if s.Package != "" {
		return s.Package
	}
	if s.Source != "" {
		result, err := appid.Detect(s.Source, s.IgnoreRules)
		if err != nil {
			log.WithField("source", s.Source).Warnf("%v", err)
			s.Source = ""
		} else {
			log.WithField("source", result.Evidence).Debugf("detected package %s", result.Package)
			s.Package = result.Package
			return s.Package
		}
	}
	if tracePackage != "" {
		log.Debugf("using package %s from trace header", tracePackage)
		return tracePackage
	}
	log.Debugf("no application package; message fallback disabled")
	return ""
}

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}
