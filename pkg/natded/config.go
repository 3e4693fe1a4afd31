package natded

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project configuration file looked up next to proof
// scripts.
const ConfigFileName = "natded.toml"

// ProjectConfig represents a natded.toml file.
type ProjectConfig struct {
	// SystemF enables the quantified extension for every script in the
	// project.
	SystemF bool `toml:"system_f"`

	// Oracle selects the checker: "auto" (default), "tsc" or "builtin".
	Oracle string `toml:"oracle,omitempty"`

	// TSC configures the external TypeScript compiler.
	TSC TSCConfig `toml:"tsc"`
}

// TSCConfig configures the tsc oracle.
type TSCConfig struct {
	// Path to the tsc executable. Defaults to "tsc" on $PATH.
	Path string `toml:"path,omitempty"`

	// Version is a semver constraint the tsc version must satisfy.
	Version string `toml:"version,omitempty"`

	// Args are extra compiler flags.
	Args []string `toml:"args,omitempty"`
}

// LoadProjectConfig loads a natded.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing %s: unknown key %s", path, undecoded[0])
	}
	switch config.Oracle {
	case "", "auto", "tsc", "builtin":
	default:
		return nil, fmt.Errorf("parsing %s: unknown oracle %q", path, config.Oracle)
	}
	return &config, nil
}

// FindProjectConfig searches for natded.toml starting from dir and walking
// up to parent directories, stopping at a .git boundary. Returns ("", nil,
// nil) if none is found.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}
