package imports

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/litgen/internal/document"
	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/logfields"
	"git.home.luguber.info/inful/litgen/internal/markdown"
	"git.home.luguber.info/inful/litgen/internal/metrics"
)

// DefaultMaxDepth bounds how deeply imported documents may nest imports.
const DefaultMaxDepth = 8

// Default markers bracketing imported source for the generator framework.
const (
	DefaultStartMarker = "zamm_yang::helper::start_imports();"
	DefaultEndMarker   = "zamm_yang::helper::end_imports();"
)

// Resolver expands import declarations.
type Resolver struct {
	BaseDir              string // directory top-level local declarations are relative to
	Root                 string // identity of the root document, for cycle detection
	MaxConcurrentFetches int    // 0 means unbounded
	MaxDepth             int
	StartMarker          string
	EndMarker            string
	Fetcher              Fetcher
	Recorder             metrics.Recorder
}

// Sources lists every import location read during a resolution.
type Sources struct {
	Files []string
	URLs  []string
}

// target is one declaration resolved against the document declaring it.
type target struct {
	index    int
	decl     string
	kind     Kind
	location string // absolute path or URL
}

// origin is where a document came from; relative declarations resolve
// against it.
type origin struct {
	dir  string
	base *url.URL
}

type resolution struct {
	mu    sync.Mutex
	files map[string]struct{}
	urls  map[string]struct{}
}

func (r *resolution) record(t target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.kind == KindNetwork {
		r.urls[t.location] = struct{}{}
	} else {
		r.files[t.location] = struct{}{}
	}
}

func (r *resolution) sources() Sources {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Sources{Files: sortedKeys(r.files), URLs: sortedKeys(r.urls)}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve returns ext with its imports expanded into the source buffer.
func (r *Resolver) Resolve(ctx context.Context, ext markdown.Extraction) (markdown.Extraction, error) {
	resolved, _, err := r.ResolveAll(ctx, ext)
	return resolved, err
}

// ResolveAll is Resolve that also reports every file and URL it read.
//
// When ext declares imports, the result's source is the start marker, the
// imported sources in declaration order, the end marker, and then ext's own
// source. The manifest and import list pass through unchanged. On failure
// nothing is returned.
func (r *Resolver) ResolveAll(ctx context.Context, ext markdown.Extraction) (markdown.Extraction, Sources, error) {
	res := &resolution{files: map[string]struct{}{}, urls: map[string]struct{}{}}
	if countDeclarations(ext.Imports) == 0 {
		return ext, res.sources(), nil
	}

	var chain []string
	if r.Root != "" {
		chain = []string{r.Root}
	}
	imported, err := r.expand(ctx, res, origin{dir: r.BaseDir}, ext.Imports, chain, 1)
	if err != nil {
		return markdown.Extraction{}, Sources{}, err
	}

	source := markdown.JoinSource(r.startMarker()+"\n", imported)
	source = markdown.JoinSource(source, r.endMarker()+"\n")
	source = markdown.JoinSource(source, ext.Source)

	return markdown.Extraction{
		Source:   source,
		Manifest: ext.Manifest,
		Imports:  ext.Imports,
	}, res.sources(), nil
}

// expand loads every declaration of one document and concatenates their
// fully expanded sources by declaration index.
func (r *Resolver) expand(ctx context.Context, res *resolution, from origin, decls []string, chain []string, depth int) (string, error) {
	targets, err := r.targets(from, decls)
	if err != nil {
		return "", err
	}
	for _, t := range targets {
		if slices.Contains(chain, t.location) {
			return "", errors.ValidationError("import cycle detected").
				WithContext("import", t.location).
				WithContext("chain", strings.Join(append(slices.Clone(chain), t.location), " -> ")).
				Build()
		}
	}

	results := make([]string, len(targets))

	for _, t := range targets {
		if t.kind != KindLocal {
			continue
		}
		source, err := r.loadLocal(ctx, res, t, chain, depth)
		if err != nil {
			return "", err
		}
		results[t.index] = source
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.MaxConcurrentFetches > 0 {
		g.SetLimit(r.MaxConcurrentFetches)
	}
	launched := 0
	for _, t := range targets {
		if t.kind != KindNetwork {
			continue
		}
		launched++
		t := t
		g.Go(func() error {
			source, err := r.loadNetwork(gctx, res, t, chain, depth)
			if err != nil {
				return err
			}
			results[t.index] = source
			return nil
		})
	}
	if launched > 0 {
		r.recorder().SetFetchConcurrency(launched)
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var composed string
	for _, source := range results {
		composed = markdown.JoinSource(composed, source)
	}
	return composed, nil
}

func (r *Resolver) targets(from origin, decls []string) ([]target, error) {
	targets := make([]target, 0, len(decls))
	for _, decl := range decls {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		t, err := locate(from, decl)
		if err != nil {
			return nil, err
		}
		t.index = len(targets)
		targets = append(targets, t)
	}
	return targets, nil
}

func locate(from origin, decl string) (target, error) {
	if Classify(decl) == KindNetwork {
		return target{decl: decl, kind: KindNetwork, location: decl}, nil
	}
	if from.base != nil {
		ref, err := url.Parse(decl)
		if err != nil {
			return target{}, errors.ValidationError(fmt.Sprintf("invalid import declaration %q", decl)).
				WithCause(err).
				WithContext("base", from.base.String()).
				Build()
		}
		return target{decl: decl, kind: KindNetwork, location: from.base.ResolveReference(ref).String()}, nil
	}
	path := decl
	if !filepath.IsAbs(path) {
		path = filepath.Join(from.dir, path)
	}
	return target{decl: decl, kind: KindLocal, location: filepath.Clean(path)}, nil
}

func (r *Resolver) loadLocal(ctx context.Context, res *resolution, t target, chain []string, depth int) (string, error) {
	start := time.Now()
	slog.Debug("Loading local import", logfields.Path(t.location), logfields.ImportIndex(t.index))

	text, err := document.ReadFile(t.location)
	r.recorder().ObserveFetchDuration(KindLocal.String(), time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	res.record(t)

	return r.expandDocument(ctx, res, t, origin{dir: filepath.Dir(t.location)}, markdown.Extract(text), chain, depth)
}

func (r *Resolver) loadNetwork(ctx context.Context, res *resolution, t target, chain []string, depth int) (string, error) {
	start := time.Now()
	slog.Info("Downloading import", logfields.URL(t.location), logfields.ImportIndex(t.index))

	body, err := r.fetcher().Fetch(ctx, t.location)
	r.recorder().ObserveFetchDuration(KindNetwork.String(), time.Since(start), err == nil)
	if err != nil {
		return "", err
	}
	text, err := document.Decode(body)
	if err != nil {
		return "", err
	}
	res.record(t)
	slog.Debug("Downloaded import", logfields.URL(t.location), logfields.Since(start))

	base, err := url.Parse(t.location)
	if err != nil {
		return "", errors.FetchError("invalid import URL").WithCause(err).WithContext("url", t.location).Build()
	}
	return r.expandDocument(ctx, res, t, origin{base: base}, markdown.Extract(text), chain, depth)
}

// expandDocument prepends an imported document's own imports to its source.
func (r *Resolver) expandDocument(ctx context.Context, res *resolution, t target, from origin, ext markdown.Extraction, chain []string, depth int) (string, error) {
	if countDeclarations(ext.Imports) == 0 {
		return ext.Source, nil
	}
	if depth >= r.maxDepth() {
		return "", errors.ValidationError(fmt.Sprintf("imports nested deeper than %d levels", r.maxDepth())).
			WithContext("import", t.location).
			Build()
	}
	nested, err := r.expand(ctx, res, from, ext.Imports, append(slices.Clone(chain), t.location), depth+1)
	if err != nil {
		return "", err
	}
	return markdown.JoinSource(nested, ext.Source), nil
}

func countDeclarations(decls []string) int {
	n := 0
	for _, d := range decls {
		if strings.TrimSpace(d) != "" {
			n++
		}
	}
	return n
}

func (r *Resolver) maxDepth() int {
	if r.MaxDepth > 0 {
		return r.MaxDepth
	}
	return DefaultMaxDepth
}

func (r *Resolver) startMarker() string {
	if r.StartMarker != "" {
		return r.StartMarker
	}
	return DefaultStartMarker
}

func (r *Resolver) endMarker() string {
	if r.EndMarker != "" {
		return r.EndMarker
	}
	return DefaultEndMarker
}

func (r *Resolver) fetcher() Fetcher {
	if r.Fetcher != nil {
		return r.Fetcher
	}
	return NewHTTPFetcher(0)
}

func (r *Resolver) recorder() metrics.Recorder {
	if r.Recorder != nil {
		return r.Recorder
	}
	return metrics.NoopRecorder{}
}
