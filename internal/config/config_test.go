package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
)

// Test Plan for Config System:
// - Default() returns the built-in defaults
// - Load() uses defaults when no litgen.yaml exists
// - Load() merges litgen.yaml with defaults and expands ${VAR}
// - Load() picks up .env without overriding the process environment
// - Load() rejects a missing explicit path, malformed YAML and invalid values

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"yin"}, cfg.Input.DefaultNames)
	assert.Equal(t, []string{"md", "markdown"}, cfg.Input.Extensions)
	assert.Equal(t, "litgen_override.md", cfg.Input.OverrideName)
	assert.Equal(t, 0, cfg.Imports.MaxConcurrentFetches)
	assert.Equal(t, 8, cfg.Imports.MaxDepth)
	assert.Equal(t, "zamm_yang::helper::start_imports();", cfg.Imports.StartMarker)
	assert.Equal(t, "zamm_yang::helper::end_imports();", cfg.Imports.EndMarker)
	assert.Equal(t, 0, cfg.Imports.Retry.MaxRetries)
	assert.Equal(t, RetryBackoffLinear, cfg.Imports.Retry.Backoff)
	assert.Equal(t, time.Second, cfg.Imports.Retry.InitialDelay)
	assert.Equal(t, ".yang", cfg.Workspace.Dir)
	assert.Equal(t, "src/main.rs", cfg.Workspace.EntryFile)
	assert.Equal(t, "Cargo.toml", cfg.Workspace.ManifestFile)
	assert.Equal(t, "cargo", cfg.Toolchain.Command)
	assert.Equal(t, []string{"build"}, cfg.Toolchain.BuildArgs)
	assert.Equal(t, "intermediate-code-generator", cfg.Toolchain.ArtifactName)
	assert.Equal(t, "intermediate-code-generator", cfg.Framework.PackageName)
	assert.Equal(t, "YANG_DEV_DIR", cfg.Framework.DevDirEnv)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, Default().Workspace, cfg.Workspace)
}

func TestLoad_MergesFileWithDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LITGEN_TEST_TOOL", "cross")
	content := `
imports:
  max_concurrent_fetches: 4
  fetch_timeout: 15s
toolchain:
  command: ${LITGEN_TEST_TOOL}
logging:
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(content), 0o600))

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Imports.MaxConcurrentFetches)
	assert.Equal(t, 15*time.Second, cfg.Imports.FetchTimeout)
	assert.Equal(t, "cross", cfg.Toolchain.Command)
	assert.Equal(t, []string{"build"}, cfg.Toolchain.BuildArgs)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvFileResolvesDevDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("YANG_DEV_DIR", "")
	require.NoError(t, os.Unsetenv("YANG_DEV_DIR"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("YANG_DEV_DIR=/src/yang\n"), 0o600))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "/src/yang", cfg.Framework.DevDir)
}

func TestLoad_EnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("YANG_DEV_DIR", "/from/process")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("YANG_DEV_DIR=/from/file\n"), 0o600))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "/from/process", cfg.Framework.DevDir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		explicit string
		category errors.ErrorCategory
	}{
		{name: "missing explicit file", explicit: "nope.yaml", category: errors.CategoryNotFound},
		{name: "malformed yaml", content: "imports: [", category: errors.CategoryConfig},
		{name: "negative concurrency", content: "imports:\n  max_concurrent_fetches: -1\n", category: errors.CategoryConfig},
		{name: "absolute workspace", content: "workspace:\n  dir: /tmp/ws\n", category: errors.CategoryConfig},
		{name: "escaping workspace", content: "workspace:\n  dir: ../ws\n", category: errors.CategoryConfig},
		{name: "negative retries", content: "imports:\n  retry:\n    max_retries: -1\n", category: errors.CategoryConfig},
		{name: "unknown backoff", content: "imports:\n  retry:\n    backoff: random\n", category: errors.CategoryConfig},
		{name: "bad log format", content: "logging:\n  format: xml\n", category: errors.CategoryConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(tt.content), 0o600))
			}
			_, err := Load(dir, tt.explicit)
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category), "got %v", err)
		})
	}
}
