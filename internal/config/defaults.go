package config

import "time"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// InputDefaultApplier handles Input configuration defaults.
type InputDefaultApplier struct{}

func (InputDefaultApplier) Domain() string { return "input" }

func (InputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if len(cfg.Input.DefaultNames) == 0 {
		cfg.Input.DefaultNames = []string{"yin"}
	}
	if len(cfg.Input.Extensions) == 0 {
		cfg.Input.Extensions = []string{"md", "markdown"}
	}
	if cfg.Input.OverrideName == "" {
		cfg.Input.OverrideName = "litgen_override.md"
	}
	return nil
}

// ImportsDefaultApplier handles Imports configuration defaults.
type ImportsDefaultApplier struct{}

func (ImportsDefaultApplier) Domain() string { return "imports" }

func (ImportsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Imports.MaxDepth == 0 {
		cfg.Imports.MaxDepth = 8
	}
	if cfg.Imports.StartMarker == "" {
		cfg.Imports.StartMarker = "zamm_yang::helper::start_imports();"
	}
	if cfg.Imports.EndMarker == "" {
		cfg.Imports.EndMarker = "zamm_yang::helper::end_imports();"
	}
	if cfg.Imports.Retry.Backoff == "" {
		cfg.Imports.Retry.Backoff = RetryBackoffLinear
	}
	if cfg.Imports.Retry.InitialDelay == 0 {
		cfg.Imports.Retry.InitialDelay = time.Second
	}
	if cfg.Imports.Retry.MaxDelay == 0 {
		cfg.Imports.Retry.MaxDelay = 30 * time.Second
	}
	return nil
}

// WorkspaceDefaultApplier handles Workspace configuration defaults.
type WorkspaceDefaultApplier struct{}

func (WorkspaceDefaultApplier) Domain() string { return "workspace" }

func (WorkspaceDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Workspace.Dir == "" {
		cfg.Workspace.Dir = ".yang"
	}
	if cfg.Workspace.EntryFile == "" {
		cfg.Workspace.EntryFile = "src/main.rs"
	}
	if cfg.Workspace.ManifestFile == "" {
		cfg.Workspace.ManifestFile = "Cargo.toml"
	}
	return nil
}

// ToolchainDefaultApplier handles Toolchain and Framework configuration defaults.
type ToolchainDefaultApplier struct{}

func (ToolchainDefaultApplier) Domain() string { return "toolchain" }

func (ToolchainDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Toolchain.Command == "" {
		cfg.Toolchain.Command = "cargo"
	}
	if len(cfg.Toolchain.BuildArgs) == 0 {
		cfg.Toolchain.BuildArgs = []string{"build"}
	}
	if cfg.Toolchain.ArtifactName == "" {
		cfg.Toolchain.ArtifactName = "intermediate-code-generator"
	}
	if cfg.Toolchain.ProfileDir == "" {
		cfg.Toolchain.ProfileDir = "target/debug"
	}

	fw := &cfg.Framework
	if fw.PackageName == "" {
		// Cargo names the binary after the package.
		fw.PackageName = cfg.Toolchain.ArtifactName
	}
	if fw.PackageVersion == "" {
		fw.PackageVersion = "1.0.0"
	}
	if fw.Edition == "" {
		fw.Edition = "2018"
	}
	if fw.YinVersion == "" {
		fw.YinVersion = "0.0.13"
	}
	if fw.YangVersion == "" {
		fw.YangVersion = "0.0.12"
	}
	if fw.DevDirEnv == "" {
		fw.DevDirEnv = "YANG_DEV_DIR"
	}
	return nil
}

// LoggingDefaultApplier handles Logging configuration defaults.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		InputDefaultApplier{},
		ImportsDefaultApplier{},
		WorkspaceDefaultApplier{},
		ToolchainDefaultApplier{},
		LoggingDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
