package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/bdlm/errors"
	"github.com/morozRed/crashid/internal/codes"
	"github.com/morozRed/crashid/internal/crashid"
	yaml "gopkg.in/yaml.v2"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".crashid.yaml"

// DefaultStore is where grouped buckets are kept unless configured.
const DefaultStore = ".crashid/buckets.json"

// Config represents the project configuration file
type Config struct {
	// Package is the application package used for message fallbacks.
	Package string `yaml:"package"`
	// Source is a source tree to detect Package from when it is unset.
	Source string `yaml:"source"`
	// SkipPackages extends the default platform skip-list.
	SkipPackages []string `yaml:"skip_packages"`
	// ReplaceSkipList drops the defaults and uses SkipPackages alone.
	ReplaceSkipList bool `yaml:"replace_skip_list"`
	// Store is the bucket file used by group.
	Store string `yaml:"store"`
	// Ignore holds extra ignore rules for directory walks.
	Ignore []string `yaml:"ignore"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{Store: DefaultStore}
}

// Load reads the config file in dir. A missing file yields Default().
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName), true)
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errs.Wrap(err, codes.ErrConfigInvalid, "failed to parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return nil, errs.Wrap(err, codes.ErrConfigInvalid, "invalid config %s", path)
	}
	return cfg, nil
}

// SkipList returns the effective skip-list.
func (c *Config) SkipList() crashid.SkipList {
	if c.ReplaceSkipList {
		return crashid.SkipList(nil).With(c.SkipPackages...)
	}
	return crashid.DefaultSkipList.With(c.SkipPackages...)
}

func (c *Config) validate() error {
	c.Package = strings.TrimSpace(c.Package)
	if strings.ContainsAny(c.Package, " /{}") {
		return fmt.Errorf("package %q is not a valid application package", c.Package)
	}
	for _, prefix := range c.SkipPackages {
		if strings.TrimSpace(prefix) == "" {
			return fmt.Errorf("skip_packages entries must not be empty")
		}
	}
	if c.ReplaceSkipList && len(c.SkipPackages) == 0 {
		return fmt.Errorf("replace_skip_list requires skip_packages")
	}
	if strings.TrimSpace(c.Store) == "" {
		c.Store = DefaultStore
	}
	return nil
}
