package markdown

import (
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/litgen/internal/frontmatter"
	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// Extraction is the code extracted from one or more literate documents.
type Extraction struct {
	Source   string   // concatenated source fragments
	Manifest string   // concatenated manifest fragments
	Imports  []string // import declarations in declared order; never empty strings
}

// IsEmpty reports whether the extraction carries nothing at all.
func (e Extraction) IsEmpty() bool {
	return e.Source == "" && e.Manifest == "" && len(e.Imports) == 0
}

// Extract parses a literate document into an Extraction. It never fails:
// malformed front matter is logged and treated as absent.
func Extract(content string) Extraction {
	var ext Extraction

	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		slog.Warn("Ignoring unterminated front matter", logfields.Error(err))
	}
	if had {
		header, err := frontmatter.ParseHeader(fm)
		if err != nil {
			slog.Warn("Ignoring malformed front matter", logfields.Error(err))
		} else if len(header.Imports) > 0 {
			ext.Imports = []string(header.Imports)
		}
	}

	src := []byte(body)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var source, manifest strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		block, ok := n.(*gmast.FencedCodeBlock)
		if !ok {
			return gmast.WalkContinue, nil
		}
		switch Classify(string(block.Language(src))) {
		case TagSource:
			writeLines(&source, block, src)
		case TagManifest:
			writeLines(&manifest, block, src)
		case TagOther:
		}
		return gmast.WalkSkipChildren, nil
	})

	ext.Source = trimTrailingBlank(source.String())
	ext.Manifest = trimTrailingBlank(manifest.String())
	return ext
}

func writeLines(w *strings.Builder, block *gmast.FencedCodeBlock, src []byte) {
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if seg.Padding > 0 {
			w.WriteString(strings.Repeat(" ", seg.Padding))
		}
		w.Write(seg.Value(src))
	}
}

// trimTrailingBlank removes exactly one trailing blank line, which appears
// when a fragment already ended in an empty line.
func trimTrailingBlank(s string) string {
	if strings.HasSuffix(s, "\n\n") {
		return s[:len(s)-1]
	}
	return s
}

// JoinSource appends next after prev, inserting a newline when prev does not
// already end with one.
func JoinSource(prev, next string) string {
	switch {
	case prev == "":
		return next
	case next == "":
		return prev
	case strings.HasSuffix(prev, "\n"):
		return prev + next
	default:
		return prev + "\n" + next
	}
}
