// Package frontmatter splits YAML front matter from a literate document and
// decodes the header fields litgen understands.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Header holds the front matter fields consumed by the extractor.
type Header struct {
	Imports StringList `yaml:"imports"`
}

// StringList decodes either a single YAML string or a sequence of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
	}
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
// Input is expected to use LF line endings.
//
// If the document does not start with a delimiter line, had is false and body
// is the full input.
func Split(content string) (frontmatter, body string, had bool, err error) {
	open := delimiter + "\n"
	if !strings.HasPrefix(content, open) {
		return "", content, false, nil
	}
	rest := content[len(open):]
	if strings.HasPrefix(rest, open) {
		return "", rest[len(open):], true, nil
	}

	idx := strings.Index(rest, "\n"+delimiter+"\n")
	if idx < 0 {
		if strings.HasSuffix(rest, "\n"+delimiter) {
			return rest[:len(rest)-len(delimiter)], "", true, nil
		}
		return "", content, false, ErrMissingClosingDelimiter
	}
	return rest[:idx+1], rest[idx+len(delimiter)+2:], true, nil
}

// ParseHeader decodes raw YAML frontmatter (without delimiters). Blank import
// entries are dropped; surrounding whitespace is trimmed.
func ParseHeader(frontmatter string) (Header, error) {
	var h Header
	if strings.TrimSpace(frontmatter) == "" {
		return h, nil
	}
	if err := yaml.Unmarshal([]byte(frontmatter), &h); err != nil {
		return Header{}, err
	}
	imports := make(StringList, 0, len(h.Imports))
	for _, imp := range h.Imports {
		if s := strings.TrimSpace(imp); s != "" {
			imports = append(imports, s)
		}
	}
	h.Imports = imports
	return h, nil
}
