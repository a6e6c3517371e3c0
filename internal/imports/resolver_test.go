package imports

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/markdown"
)

func rustDoc(code string) string {
	return "```rust\n" + code + "\n```\n"
}

func rustDocWithImports(code string, imports ...string) string {
	var b strings.Builder
	b.WriteString("---\nimports:\n")
	for _, imp := range imports {
		fmt.Fprintf(&b, "  - %q\n", imp)
	}
	b.WriteString("---\n")
	b.WriteString(rustDoc(code))
	return b.String()
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newResolver(dir string) *Resolver {
	return &Resolver{BaseDir: dir, Fetcher: NewHTTPFetcher(5 * time.Second)}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindNetwork, Classify("https://example.com/a.md"))
	assert.Equal(t, KindNetwork, Classify("HTTP://example.com/a.md"))
	assert.Equal(t, KindLocal, Classify("docs/a.md"))
	assert.Equal(t, KindLocal, Classify("/abs/a.md"))
	assert.Equal(t, KindLocal, Classify("ftp://example.com/a.md"))
	assert.Equal(t, "network", KindNetwork.String())
	assert.Equal(t, "local", KindLocal.String())
}

func TestResolve_NoImportsIsIdentity(t *testing.T) {
	ext := markdown.Extraction{Source: "let x = 5;\n", Manifest: "serde = \"1\"\n"}
	got, err := newResolver(t.TempDir()).Resolve(context.Background(), ext)
	require.NoError(t, err)
	require.Equal(t, ext, got)
}

func TestResolve_BlankDeclarationsAreIgnored(t *testing.T) {
	ext := markdown.Extraction{Source: "host;\n", Imports: []string{"", "  "}}
	got, err := newResolver(t.TempDir()).Resolve(context.Background(), ext)
	require.NoError(t, err)
	require.Equal(t, "host;\n", got.Source)
}

// Declared order is [local A, network B, network C]; B is held until C has
// been served so B always completes last.
func TestResolve_ComposesInDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDoc("a();"))

	cServed := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/b.md":
			select {
			case <-cServed:
			case <-time.After(5 * time.Second):
			}
			_, _ = fmt.Fprint(w, rustDoc("b();"))
		case "/c.md":
			_, _ = fmt.Fprint(w, rustDoc("c();"))
			close(cServed)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ext := markdown.Extraction{
		Source:  "host();\n",
		Imports: []string{"a.md", srv.URL + "/b.md", srv.URL + "/c.md"},
	}
	got, err := newResolver(dir).Resolve(context.Background(), ext)
	require.NoError(t, err)

	want := DefaultStartMarker + "\n" +
		"a();\n" +
		"b();\n" +
		"c();\n" +
		DefaultEndMarker + "\n" +
		"host();\n"
	require.Equal(t, want, got.Source)
	require.Equal(t, ext.Imports, got.Imports)
}

func TestResolve_SingleMarkerPairBeforeHostSource(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDoc("a();"))
	writeDoc(t, dir, "b.md", rustDoc("b();"))

	ext := markdown.Extraction{Source: "host();\n", Imports: []string{"a.md", "b.md"}}
	got, err := newResolver(dir).Resolve(context.Background(), ext)
	require.NoError(t, err)

	require.Equal(t, 1, strings.Count(got.Source, DefaultStartMarker))
	require.Equal(t, 1, strings.Count(got.Source, DefaultEndMarker))
	require.True(t, strings.HasPrefix(got.Source, DefaultStartMarker))
	require.Less(t, strings.Index(got.Source, DefaultEndMarker), strings.Index(got.Source, "host();"))
}

func TestResolve_CustomMarkers(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDoc("a();"))

	r := newResolver(dir)
	r.StartMarker = "begin();"
	r.EndMarker = "finish();"
	got, err := r.Resolve(context.Background(), markdown.Extraction{Source: "host();", Imports: []string{"a.md"}})
	require.NoError(t, err)
	require.Equal(t, "begin();\na();\nfinish();\nhost();", got.Source)
}

func TestResolve_ManifestPassesThrough(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDoc("a();")+"```toml\nrand = \"0.8\"\n```\n")

	ext := markdown.Extraction{Manifest: "serde = \"1\"\n", Imports: []string{"a.md"}}
	got, err := newResolver(dir).Resolve(context.Background(), ext)
	require.NoError(t, err)
	require.Equal(t, "serde = \"1\"\n", got.Manifest)
}

func TestResolve_MissingLocalImport(t *testing.T) {
	ext := markdown.Extraction{Source: "host();\n", Imports: []string{"missing.md"}}
	got, err := newResolver(t.TempDir()).Resolve(context.Background(), ext)
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryNotFound))
	require.True(t, got.IsEmpty())
}

func TestResolve_NetworkFailureAbortsResolution(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDoc("a();"))

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ext := markdown.Extraction{Source: "host();\n", Imports: []string{"a.md", srv.URL + "/missing.md"}}
	got, err := newResolver(dir).Resolve(context.Background(), ext)
	require.Error(t, err)
	require.True(t, got.IsEmpty())

	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	require.Equal(t, errors.CategoryNetwork, ce.Category())
	status, ok := ce.Context().Get("status")
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, status)
	u, ok := ce.Context().GetString("url")
	require.True(t, ok)
	require.Equal(t, srv.URL+"/missing.md", u)
}

func TestResolve_FailureCancelsSiblingFetches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow.md" {
			select {
			case <-r.Context().Done():
			case <-time.After(10 * time.Second):
			}
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ext := markdown.Extraction{Imports: []string{srv.URL + "/slow.md", srv.URL + "/fail.md"}}
	start := time.Now()
	_, err := newResolver(t.TempDir()).Resolve(context.Background(), ext)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestResolve_BoundedConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = fmt.Fprint(w, rustDoc(strings.TrimPrefix(r.URL.Path, "/")+";"))
	}))
	defer srv.Close()

	var decls []string
	for i := 0; i < 6; i++ {
		decls = append(decls, fmt.Sprintf("%s/f%d", srv.URL, i))
	}
	r := newResolver(t.TempDir())
	r.MaxConcurrentFetches = 2
	got, err := r.Resolve(context.Background(), markdown.Extraction{Imports: decls})
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(2))
	require.Contains(t, got.Source, "f0;\nf1;\nf2;\nf3;\nf4;\nf5;\n")
}

func TestResolve_SetsUserAgent(t *testing.T) {
	var mu sync.Mutex
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agent = r.UserAgent()
		mu.Unlock()
		_, _ = fmt.Fprint(w, rustDoc("x();"))
	}))
	defer srv.Close()

	_, err := newResolver(t.TempDir()).Resolve(context.Background(), markdown.Extraction{Imports: []string{srv.URL}})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.True(t, strings.HasPrefix(agent, "litgen/"))
}

func TestResolve_NestedLocalImports(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "lib/a.md", rustDocWithImports("a();", "b.md"))
	writeDoc(t, dir, "lib/b.md", rustDoc("b();"))

	ext := markdown.Extraction{Source: "host();\n", Imports: []string{"lib/a.md"}}
	got, sources, err := newResolver(dir).ResolveAll(context.Background(), ext)
	require.NoError(t, err)

	want := DefaultStartMarker + "\nb();\na();\n" + DefaultEndMarker + "\nhost();\n"
	require.Equal(t, want, got.Source)
	require.Equal(t, []string{filepath.Join(dir, "lib", "a.md"), filepath.Join(dir, "lib", "b.md")}, sources.Files)
	require.Empty(t, sources.URLs)
}

func TestResolve_NetworkDocumentRelativeImport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/docs/main.md":
			_, _ = fmt.Fprint(w, rustDocWithImports("main();", "shared/util.md"))
		case "/docs/shared/util.md":
			_, _ = fmt.Fprint(w, rustDoc("util();"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ext := markdown.Extraction{Imports: []string{srv.URL + "/docs/main.md"}}
	got, sources, err := newResolver(t.TempDir()).ResolveAll(context.Background(), ext)
	require.NoError(t, err)
	require.Equal(t, DefaultStartMarker+"\nutil();\nmain();\n"+DefaultEndMarker+"\n", got.Source)
	require.Equal(t, []string{srv.URL + "/docs/main.md", srv.URL + "/docs/shared/util.md"}, sources.URLs)
}

func TestResolve_ImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDocWithImports("a();", "b.md"))
	writeDoc(t, dir, "b.md", rustDocWithImports("b();", "a.md"))

	_, err := newResolver(dir).Resolve(context.Background(), markdown.Extraction{Imports: []string{"a.md"}})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestResolve_ImportOfRootDocumentIsCycle(t *testing.T) {
	dir := t.TempDir()
	root := writeDoc(t, dir, "yin.md", rustDocWithImports("host();", "a.md"))
	writeDoc(t, dir, "a.md", rustDocWithImports("a();", "yin.md"))

	r := newResolver(dir)
	r.Root = root
	_, err := r.Resolve(context.Background(), markdown.Extraction{Imports: []string{"a.md"}})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestResolve_DuplicateSiblingImportsAreNotCycles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDoc("a();"))

	got, err := newResolver(dir).Resolve(context.Background(), markdown.Extraction{Imports: []string{"a.md", "a.md"}})
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(got.Source, "a();"))
}

func TestResolve_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", rustDocWithImports("a();", "b.md"))
	writeDoc(t, dir, "b.md", rustDoc("b();"))

	r := newResolver(dir)
	r.MaxDepth = 1
	_, err := r.Resolve(context.Background(), markdown.Extraction{Imports: []string{"a.md"}})
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryValidation))
}
