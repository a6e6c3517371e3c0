package markdown

import "strings"

// Tag is the closed set of fragment classifications.
type Tag int

const (
	// TagOther marks blocks that are ignored: unknown languages, untagged
	// fences and indented code.
	TagOther Tag = iota
	TagSource
	TagManifest
)

func (t Tag) String() string {
	switch t {
	case TagSource:
		return "source"
	case TagManifest:
		return "manifest"
	default:
		return "other"
	}
}

var languageTags = map[string]Tag{
	"rust": TagSource,
	"toml": TagManifest,
}

// Classify maps a fenced block language to its Tag. Attributes after a comma
// (`rust,ignore`) are not part of the language. Matching is exact: a typo
// such as `Rust` or `rs` classifies as TagOther.
func Classify(language string) Tag {
	lang, _, _ := strings.Cut(strings.TrimSpace(language), ",")
	if tag, ok := languageTags[lang]; ok {
		return tag
	}
	return TagOther
}
