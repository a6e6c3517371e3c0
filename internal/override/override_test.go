package override

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/markdown"
)

func TestMerge_AppendsSource(t *testing.T) {
	merged := Merge(markdown.Extraction{Source: "a;"}, markdown.Extraction{Source: "b;"})
	require.Equal(t, "a;\nb;", merged.Source)
}

func TestMerge_ReplacesImports(t *testing.T) {
	base := markdown.Extraction{Imports: []string{"a.md", "b.md"}}
	over := markdown.Extraction{Imports: []string{"c.md"}}
	require.Equal(t, []string{"c.md"}, Merge(base, over).Imports)
}

func TestMerge_KeepsBaseWhenOverrideEmpty(t *testing.T) {
	base := markdown.Extraction{
		Source:   "a;\n",
		Manifest: "[dependencies]\n",
		Imports:  []string{"a.md"},
	}
	require.Equal(t, base, Merge(base, markdown.Extraction{}))
}

func TestMerge_ReplacesManifest(t *testing.T) {
	base := markdown.Extraction{Manifest: "serde = \"1\"\n"}
	over := markdown.Extraction{Manifest: "rand = \"0.8\"\n"}
	require.Equal(t, "rand = \"0.8\"\n", Merge(base, over).Manifest)
}

func TestLoad_Missing(t *testing.T) {
	ext, found, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	require.False(t, found)
	require.True(t, ext.IsEmpty())
}

func TestLoad_Present(t *testing.T) {
	dir := t.TempDir()
	doc := "---\nimports: [other.md]\n---\n```rust\nb;\n```\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(doc), 0o600))

	ext, found, err := Load(dir, "")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "b;\n", ext.Source)
	require.Equal(t, []string{"other.md"}, ext.Imports)
}

func TestLoad_DirectoryIsFileSystemError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultFileName), 0o750))

	_, _, err := Load(dir, "")
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
