package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// Layout names the generated files relative to the workspace directory.
type Layout struct {
	Dir          string // workspace directory, relative to the working directory
	EntryFile    string
	ManifestFile string
}

// DefaultLayout is the layout of a cargo package in ".yang".
func DefaultLayout() Layout {
	return Layout{Dir: ".yang", EntryFile: "src/main.rs", ManifestFile: "Cargo.toml"}
}

// Manager handles workspace operations for one working directory.
type Manager struct {
	baseDir string
	layout  Layout
	path    string
}

// NewManager creates a workspace manager rooted at baseDir (the working
// directory). Nothing is created until Prepare.
func NewManager(baseDir string, layout Layout) *Manager {
	if baseDir == "" {
		baseDir = "."
	}
	if layout.Dir == "" {
		layout.Dir = DefaultLayout().Dir
	}
	return &Manager{
		baseDir: baseDir,
		layout:  layout,
		path:    filepath.Join(baseDir, layout.Dir),
	}
}

// GetPath returns the path to the workspace directory.
func (m *Manager) GetPath() string {
	return m.path
}

// EntryPath returns the path of the generated entry point.
func (m *Manager) EntryPath() string {
	return filepath.Join(m.path, m.layout.EntryFile)
}

// ManifestPath returns the path of the generated manifest.
func (m *Manager) ManifestPath() string {
	return filepath.Join(m.path, m.layout.ManifestFile)
}

// Prepare ensures the workspace directory exists.
func (m *Manager) Prepare() error {
	if err := os.MkdirAll(m.path, 0o750); err != nil {
		return errors.FileSystemError("failed to create workspace directory").
			WithCause(err).
			WithContext("path", m.path).
			Build()
	}
	slog.Debug("Using workspace", logfields.Path(m.path))
	return nil
}

// WriteEntry writes the generated entry point.
func (m *Manager) WriteEntry(content string) (string, error) {
	return m.write(m.layout.EntryFile, content)
}

// WriteManifest writes the generated manifest.
func (m *Manager) WriteManifest(content string) (string, error) {
	return m.write(m.layout.ManifestFile, content)
}

func (m *Manager) write(rel, content string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", errors.ValidationError(fmt.Sprintf("workspace file must be a relative path: %q", rel)).Build()
	}
	path := filepath.Join(m.path, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", errors.FileSystemError("failed to create workspace subdirectory").
			WithCause(err).
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.FileSystemError("failed to write workspace file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	slog.Debug("Wrote workspace file", logfields.Path(path))
	return path, nil
}

// ArtifactPath returns where the toolchain places the built executable,
// relative to profileDir inside the workspace.
func (m *Manager) ArtifactPath(profileDir, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(m.path, profileDir, name)
}

// Clean removes the workspace directory. A missing workspace is not an error.
func (m *Manager) Clean() error {
	if err := os.RemoveAll(m.path); err != nil {
		return errors.FileSystemError("failed to remove workspace").
			WithCause(err).
			WithContext("path", m.path).
			Build()
	}
	slog.Info("Cleaned up workspace", logfields.Path(m.path))
	return nil
}
