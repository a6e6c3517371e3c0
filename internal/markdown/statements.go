package markdown

import (
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// ImportPrefix starts an import statement in the source language.
const ImportPrefix = "use "

// EntryCode is a source buffer split for embedding into the generated entry
// point.
type EntryCode struct {
	Uses       []string // imported paths, deduplicated and sorted
	Fragments  []string // at most one fragment holding every other non-blank line
	Duplicates []string // import statements that were seen more than once
}

// SeparateStatements diverts import statements out of source. Blank lines are
// dropped and the remaining lines are kept together in one fragment so that
// multi-line literals keep their indentation.
func SeparateStatements(source string) EntryCode {
	var code EntryCode
	seen := make(map[string]bool)
	var lines []string

	for _, line := range strings.Split(source, "\n") {
		switch {
		case strings.HasPrefix(line, ImportPrefix):
			path := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[len(ImportPrefix):]), ";"))
			if seen[path] {
				slog.Warn("Duplicate import statement", logfields.Statement(line))
				code.Duplicates = append(code.Duplicates, line)
				continue
			}
			seen[path] = true
			code.Uses = append(code.Uses, path)
		case strings.TrimSpace(line) == "":
		default:
			lines = append(lines, line)
		}
	}

	sort.Strings(code.Uses)
	if len(lines) > 0 {
		code.Fragments = []string{strings.Join(lines, "\n")}
	}
	return code
}
