package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		fm      string
		body    string
		had     bool
		err     error
	}{
		{name: "no frontmatter", content: "# Title\n", body: "# Title\n"},
		{name: "with frontmatter", content: "---\nimports: [a.md]\n---\n# Title\n", fm: "imports: [a.md]\n", body: "# Title\n", had: true},
		{name: "empty frontmatter", content: "---\n---\nbody\n", body: "body\n", had: true},
		{name: "frontmatter at end of file", content: "---\nimports: a.md\n---", fm: "imports: a.md\n", had: true},
		{name: "missing closing delimiter", content: "---\nimports: a.md\n# Title\n", body: "---\nimports: a.md\n# Title\n", err: ErrMissingClosingDelimiter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, had, err := Split(tt.content)
			if tt.err != nil {
				require.True(t, errors.Is(err, tt.err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.fm, fm)
			assert.Equal(t, tt.body, body)
			assert.Equal(t, tt.had, had)
		})
	}
}

func TestParseHeader(t *testing.T) {
	t.Run("list with blanks", func(t *testing.T) {
		h, err := ParseHeader("imports:\n  - common.md\n  - ''\n  - ' https://example.com/a.md '\n")
		require.NoError(t, err)
		assert.Equal(t, StringList{"common.md", "https://example.com/a.md"}, h.Imports)
	})

	t.Run("single string", func(t *testing.T) {
		h, err := ParseHeader("imports: common.md\n")
		require.NoError(t, err)
		assert.Equal(t, StringList{"common.md"}, h.Imports)
	})

	t.Run("duplicates preserved", func(t *testing.T) {
		h, err := ParseHeader("imports: [a.md, a.md]\n")
		require.NoError(t, err)
		assert.Equal(t, StringList{"a.md", "a.md"}, h.Imports)
	})

	t.Run("unrelated keys ignored", func(t *testing.T) {
		h, err := ParseHeader("title: Yin\n")
		require.NoError(t, err)
		assert.Empty(t, h.Imports)
	})

	t.Run("mapping rejected", func(t *testing.T) {
		_, err := ParseHeader("imports:\n  a: b\n")
		require.Error(t, err)
	})
}
