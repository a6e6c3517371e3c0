package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	return errors.Join(
		cv.validateInput(),
		cv.validateImports(),
		cv.validateWorkspace(),
		cv.validateToolchain(),
		cv.validateLogging(),
	)
}

func (cv *configurationValidator) validateInput() error {
	in := cv.config.Input
	if len(in.DefaultNames) == 0 {
		return errors.New("input.default_names cannot be empty")
	}
	for _, ext := range in.Extensions {
		if ext == "" || strings.HasPrefix(ext, ".") {
			return fmt.Errorf("input.extensions entry %q must be non-empty and without a leading dot", ext)
		}
	}
	if strings.ContainsAny(in.OverrideName, `/\`) {
		return fmt.Errorf("input.override_name must be a plain file name: %s", in.OverrideName)
	}
	return nil
}

func (cv *configurationValidator) validateImports() error {
	im := cv.config.Imports
	if im.MaxConcurrentFetches < 0 {
		return errors.New("imports.max_concurrent_fetches cannot be negative")
	}
	if im.MaxDepth < 1 {
		return errors.New("imports.max_depth must be at least 1")
	}
	if im.FetchTimeout < 0 {
		return errors.New("imports.fetch_timeout cannot be negative")
	}
	if im.Retry.MaxRetries < 0 {
		return errors.New("imports.retry.max_retries cannot be negative")
	}
	switch im.Retry.Backoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return fmt.Errorf("imports.retry.backoff %q must be one of fixed, linear, exponential", im.Retry.Backoff)
	}
	return nil
}

func (cv *configurationValidator) validateWorkspace() error {
	ws := cv.config.Workspace
	for name, p := range map[string]string{
		"workspace.dir":           ws.Dir,
		"workspace.entry_file":    ws.EntryFile,
		"workspace.manifest_file": ws.ManifestFile,
	} {
		if err := validateRelativePath(name, p); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateToolchain() error {
	tc := cv.config.Toolchain
	if tc.Command == "" {
		return errors.New("toolchain.command cannot be empty")
	}
	if tc.ArtifactName == "" {
		return errors.New("toolchain.artifact_name cannot be empty")
	}
	return validateRelativePath("toolchain.profile_dir", tc.ProfileDir)
}

func (cv *configurationValidator) validateLogging() error {
	lg := cv.config.Logging
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, lg.Level) {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error: %s", lg.Level)
	}
	if lg.Format != "text" && lg.Format != "json" {
		return fmt.Errorf("logging.format must be text or json: %s", lg.Format)
	}
	return nil
}

// validateRelativePath rejects paths that would escape the working directory.
func validateRelativePath(field, p string) error {
	if p == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if filepath.IsAbs(p) {
		return fmt.Errorf("%s must be relative: %s", field, p)
	}
	clean := filepath.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s must stay inside the working directory: %s", field, p)
	}
	return nil
}
