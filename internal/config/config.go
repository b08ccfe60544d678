// Package config loads the elaboration tool's project file: which
// source files belong to which VHDL library, which standard to
// assume, and the analysis knobs the driver consults. The core never
// reads files itself; the command front end loads a Config and feeds
// its resolved libraries to the library loader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level project configuration.
type Config struct {
	// Standard selects the VHDL standard: "1993", "2002", "2008", "2019".
	Standard string `json:"standard,omitempty"`

	// Top names the root design unit, e.g. "work.soc_top", or
	// "soc_top" for a unit in library "work". The command line
	// overrides it.
	Top string `json:"top,omitempty"`

	// Libraries maps logical library names to their source files.
	Libraries map[string]LibraryConfig `json:"libraries,omitempty"`

	// Generics seeds the generic-override table: fully qualified
	// dotted generic name to textual value.
	Generics map[string]string `json:"generics,omitempty"`

	// Analysis holds elaboration options.
	Analysis AnalysisConfig `json:"analysis,omitempty"`
}

// LibraryConfig lists one library's sources as glob patterns.
type LibraryConfig struct {
	Files   []string `json:"files"`
	Exclude []string `json:"exclude,omitempty"`
}

// AnalysisConfig carries the knobs the elaboration driver reads.
type AnalysisConfig struct {
	// ResolveDefaultBinding enables LRM default binding for component
	// instances without an explicit configuration. Off, every unbound
	// component is reported instead of searched for.
	ResolveDefaultBinding bool `json:"resolveDefaultBinding,omitempty"`

	// FollowLibraryUse is read from the project file (default true),
	// but nothing in this module consults it: use clauses do not cause
	// any library to be loaded.
	FollowLibraryUse bool `json:"followLibraryUse,omitempty"`
}

// DefaultConfig returns the configuration used when no project file
// exists: everything under the working directory is library "work".
func DefaultConfig() *Config {
	return &Config{
		Standard: "2008",
		Libraries: map[string]LibraryConfig{
			"work": {
				Files: []string{"*.vhd", "*.vhdl", "**/*.vhd", "**/*.vhdl"},
			},
		},
		Analysis: AnalysisConfig{
			ResolveDefaultBinding: true,
			FollowLibraryUse:      true,
		},
	}
}

// Load finds and loads the project file. Search order:
//
//  1. ./vhdl_elab.json
//  2. ./.vhdl_elab.json
//  3. <rootPath>/vhdl_elab.json, then <rootPath>/.vhdl_elab.json
//     (if rootPath is a directory != cwd)
//  4. ~/.config/vhdl_elab/config.json
//
// Returns DefaultConfig if none is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "vhdl_elab.json"),
		filepath.Join(cwd, ".vhdl_elab.json"),
	}
	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "vhdl_elab.json"),
				filepath.Join(rootPath, ".vhdl_elab.json"),
			)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "vhdl_elab", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return DefaultConfig(), nil
}

// LoadFile loads a specific project file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Standard == "" {
		c.Standard = "2008"
	}
	if c.Libraries == nil {
		c.Libraries = DefaultConfig().Libraries
	}
}
