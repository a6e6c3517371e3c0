package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
)

// DefaultFileName is the project configuration file looked up in the working directory.
const DefaultFileName = "litgen.yaml"

// Config represents the application configuration
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Imports   ImportsConfig   `yaml:"imports"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Framework FrameworkConfig `yaml:"framework"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// InputConfig controls how the literate document is located.
type InputConfig struct {
	DefaultNames []string `yaml:"default_names"` // basenames tried when no input is given
	Extensions   []string `yaml:"extensions"`    // supported extensions, in lookup order
	OverrideName string   `yaml:"override_name"` // override document in the working directory
}

// ImportsConfig controls import resolution.
type ImportsConfig struct {
	MaxConcurrentFetches int           `yaml:"max_concurrent_fetches"` // 0 means unbounded
	MaxDepth             int           `yaml:"max_depth"`
	FetchTimeout         time.Duration `yaml:"fetch_timeout"` // 0 means no client timeout
	StartMarker          string        `yaml:"start_marker"`
	EndMarker            string        `yaml:"end_marker"`
	Retry                RetryConfig   `yaml:"retry"`
}

// RetryBackoffMode selects how the delay between fetch retries grows.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// RetryConfig controls retries of transient network import failures.
type RetryConfig struct {
	MaxRetries   int              `yaml:"max_retries"` // 0 disables retries
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay time.Duration    `yaml:"initial_delay"`
	MaxDelay     time.Duration    `yaml:"max_delay"`
}

// WorkspaceConfig describes the transient build workspace, relative to the working directory.
type WorkspaceConfig struct {
	Dir          string `yaml:"dir"`
	EntryFile    string `yaml:"entry_file"`
	ManifestFile string `yaml:"manifest_file"`
}

// ToolchainConfig describes the external toolchain used to build the generator.
type ToolchainConfig struct {
	Command      string   `yaml:"command"`
	BuildArgs    []string `yaml:"build_args"`
	ArtifactName string   `yaml:"artifact_name"`
	ProfileDir   string   `yaml:"profile_dir"` // artifact directory relative to the workspace
}

// FrameworkConfig pins the generator framework the generated program links against.
type FrameworkConfig struct {
	PackageName    string `yaml:"package_name"`
	PackageVersion string `yaml:"package_version"`
	Edition        string `yaml:"edition"`
	YinVersion     string `yaml:"yin_version"`
	YangVersion    string `yaml:"yang_version"`
	DevDirEnv      string `yaml:"dev_dir_env"`

	// DevDir is resolved from DevDirEnv at load time; not read from YAML.
	DevDir string `yaml:"-"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text|json
}

// Load reads configuration for the project rooted at dir.
//
// When path is empty, dir/litgen.yaml is used if it exists and built-in
// defaults otherwise. An explicitly given path must exist.
func Load(dir, path string) (*Config, error) {
	if err := loadEnvFiles(dir); err != nil {
		return nil, errors.ConfigError("failed to load .env file").WithCause(err).Build()
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(dir, DefaultFileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.ConfigError("failed to unmarshal config").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	case os.IsNotExist(err):
		return nil, errors.NotFoundError(fmt.Sprintf("configuration file not found: %s", path)).
			WithCause(err).
			WithContext("path", path).
			Build()
	default:
		return nil, errors.ConfigError("failed to read config file").WithCause(err).WithContext("path", path).Build()
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	cfg.Framework.DevDir = os.Getenv(cfg.Framework.DevDirEnv)

	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.ConfigError("invalid configuration").WithCause(err).WithContext("path", path).Build()
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	cfg.Framework.DevDir = os.Getenv(cfg.Framework.DevDirEnv)
	return cfg
}
