// Package document locates and reads the literate input document.
package document

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// Document is a resolved input document.
type Document struct {
	Path     string // absolute path; the document's identity
	Filename string
	Text     string
}

// Dir returns the directory containing the document.
func (d *Document) Dir() string {
	return filepath.Dir(d.Path)
}

// Locator resolves which document to read.
type Locator struct {
	Dir          string   // working directory
	DefaultNames []string // basenames tried when no explicit path is given
	Extensions   []string // supported extensions without leading dot
}

// Locate resolves explicit (if non-empty) or the first existing default
// document, then reads it.
func (l Locator) Locate(explicit string) (*Document, error) {
	path, err := l.resolve(explicit)
	if err != nil {
		return nil, err
	}
	if err := l.checkFormat(path); err != nil {
		return nil, err
	}
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Document{Path: path, Filename: filepath.Base(path), Text: text}, nil
}

func (l Locator) resolve(explicit string) (string, error) {
	if explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(l.Dir, path)
		}
		if !exists(path) {
			return "", errors.NotFoundError(fmt.Sprintf("specified input file was not found at %s", path)).
				WithContext("path", path).
				Build()
		}
		slog.Info("Using specified input file", logfields.Path(path))
		return path, nil
	}

	for _, name := range l.DefaultNames {
		for _, ext := range l.Extensions {
			path := filepath.Join(l.Dir, name+"."+ext)
			if exists(path) {
				slog.Info("Using default input file", logfields.Path(path))
				return path, nil
			}
		}
	}
	return "", errors.NotFoundError(fmt.Sprintf(
		"no input file was specified, and no default inputs were found in the current directory of %s", l.Dir)).
		WithContext("dir", l.Dir).
		Build()
}

func (l Locator) checkFormat(path string) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if slices.Contains(l.Extensions, strings.ToLower(ext)) {
		return nil
	}
	return errors.UnsupportedFormatError(fmt.Sprintf(
		"the extension %q is not recognized; supported extensions: %s", ext, strings.Join(l.Extensions, ", "))).
		WithContext("path", path).
		Build()
}

// ReadFile reads a document from disk and decodes it with Decode.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFoundError(fmt.Sprintf("document not found at %s", path)).
				WithCause(err).
				WithContext("path", path).
				Build()
		}
		return "", errors.FileSystemError("failed to read document").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return Decode(data)
}

// Decode converts raw document bytes to text. A UTF-8 or UTF-16 byte order
// mark selects the encoding (UTF-8 otherwise) and CRLF line endings are
// normalized to LF.
func Decode(data []byte) (string, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", errors.UnsupportedFormatError("document is not valid text").WithCause(err).Build()
	}
	return string(bytes.ReplaceAll(decoded, []byte("\r\n"), []byte("\n"))), nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
