// Package override layers an optional second literate document over the
// extraction of the main input.
package override

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/litgen/internal/document"
	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/markdown"
)

// DefaultFileName is the override document looked up in the working directory.
const DefaultFileName = "litgen_override.md"

// Load extracts dir/name when it exists. A missing override yields an empty
// extraction and false.
func Load(dir, name string) (markdown.Extraction, bool, error) {
	if name == "" {
		name = DefaultFileName
	}
	path := filepath.Join(dir, name)

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		slog.Debug("No override file", logfields.Path(path))
		return markdown.Extraction{}, false, nil
	case err != nil:
		return markdown.Extraction{}, false, errors.FileSystemError("failed to stat override file").
			WithCause(err).
			WithContext("path", path).
			Build()
	case info.IsDir():
		return markdown.Extraction{}, false, errors.FileSystemError("override path is a directory").
			WithContext("path", path).
			Build()
	}

	text, err := document.ReadFile(path)
	if err != nil {
		return markdown.Extraction{}, false, err
	}
	slog.Info("Applying override file", logfields.Path(path))
	return markdown.Extract(text), true, nil
}

// Merge applies over on top of base. Source is appended after the base
// source. Imports and manifest are replaced wholesale when the override
// declares any.
func Merge(base, over markdown.Extraction) markdown.Extraction {
	merged := markdown.Extraction{
		Source:   markdown.JoinSource(base.Source, over.Source),
		Imports:  base.Imports,
		Manifest: base.Manifest,
	}
	if len(over.Imports) > 0 {
		merged.Imports = over.Imports
	}
	if over.Manifest != "" {
		merged.Manifest = over.Manifest
	}
	return merged
}
