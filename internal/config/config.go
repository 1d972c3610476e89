// Package config resolves mdcode settings from defaults, config files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Keys shared by config files, environment variables and flags.
const (
	KeySeparator   = "separator"
	KeyInline      = "inline"
	KeyLineNumbers = "line-numbers"
	KeyFenced      = "fenced"
	KeyEngine      = "engine"
	KeyLogLevel    = "log-level"
)

const (
	envPrefix       = "MDCODE"
	projectFileName = ".mdcode.yaml"
	userDirName     = "mdcode"
	userFileName    = "config.yaml"
)

// Config holds the settings that flags may override.
type Config struct {
	Separator   string `mapstructure:"separator"`
	Inline      bool   `mapstructure:"inline"`
	LineNumbers bool   `mapstructure:"line-numbers"`
	Fenced      bool   `mapstructure:"fenced"`
	Engine      string `mapstructure:"engine"`
	LogLevel    string `mapstructure:"log-level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Separator: "\n",
		Engine:    "scan",
		LogLevel:  "info",
	}
}

// LoadOptions controls where configuration is looked up.
type LoadOptions struct {
	// WorkingDir is searched for a project .mdcode.yaml. Empty means the
	// current directory.
	WorkingDir string
	// ExplicitPath is a config file that must exist.
	ExplicitPath string
	// UserConfigDir overrides the user configuration directory.
	UserConfigDir string
	// IgnoreUserConfig skips the user configuration file.
	IgnoreUserConfig bool
	// IgnoreEnv skips MDCODE_* environment variables.
	IgnoreEnv bool
}

// Result is the resolved configuration and the files it was read from.
type Result struct {
	Config     Config
	LoadedFrom []string
}

// Load merges, from lowest to highest precedence: defaults, the user config
// file, the project config file, the explicit config file and environment
// variables such as MDCODE_LINE_NUMBERS.
func Load(opts LoadOptions) (*Result, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults := Default()
	v.SetDefault(KeySeparator, defaults.Separator)
	v.SetDefault(KeyInline, defaults.Inline)
	v.SetDefault(KeyLineNumbers, defaults.LineNumbers)
	v.SetDefault(KeyFenced, defaults.Fenced)
	v.SetDefault(KeyEngine, defaults.Engine)
	v.SetDefault(KeyLogLevel, defaults.LogLevel)

	result := &Result{}

	for _, path := range candidates(opts) {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}

		v.SetConfigFile(path)

		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		result.LoadedFrom = append(result.LoadedFrom, path)
	}

	if len(opts.ExplicitPath) != 0 {
		v.SetConfigFile(opts.ExplicitPath)

		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.ExplicitPath, err)
		}

		result.LoadedFrom = append(result.LoadedFrom, opts.ExplicitPath)
	}

	if !opts.IgnoreEnv {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
	}

	if err := v.Unmarshal(&result.Config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return result, nil
}

func candidates(opts LoadOptions) []string {
	var paths []string

	if !opts.IgnoreUserConfig {
		dir := opts.UserConfigDir
		if len(dir) == 0 {
			dir, _ = os.UserConfigDir()
		}

		if len(dir) != 0 {
			paths = append(paths, filepath.Join(dir, userDirName, userFileName))
		}
	}

	workDir := opts.WorkingDir
	if len(workDir) == 0 {
		workDir = "."
	}

	return append(paths, filepath.Join(workDir, projectFileName))
}
