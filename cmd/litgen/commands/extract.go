package commands

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/pipeline"
)

// ExtractCmd implements the 'extract' command.
type ExtractCmd struct {
	Input  string `arg:"" optional:"" help:"Literate document to read (default: yin.md or yin.markdown)"`
	Format string `short:"f" help:"Output format (text|yaml)" enum:"text,yaml" default:"text"`
}

type extractionView struct {
	Filename string   `yaml:"filename"`
	Imports  []string `yaml:"imports,omitempty"`
	Source   string   `yaml:"source"`
	Manifest string   `yaml:"manifest,omitempty"`
	Files    []string `yaml:"files,omitempty"`
	URLs     []string `yaml:"urls,omitempty"`
}

func (e *ExtractCmd) Run(g *Global, root *CLI) error {
	dir, cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	out, err := pipeline.New(dir, cfg).Parse(g.context(), e.Input)
	if err != nil {
		return err
	}

	w := g.stdout()
	if e.Format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		view := extractionView{
			Filename: out.Filename,
			Imports:  out.Extraction.Imports,
			Source:   out.Extraction.Source,
			Manifest: out.Extraction.Manifest,
			Files:    out.Files,
			URLs:     out.URLs,
		}
		if err := enc.Encode(view); err != nil {
			return errors.InternalError("failed to encode extraction").WithCause(err).Build()
		}
		return enc.Close()
	}

	_, _ = fmt.Fprint(w, out.Extraction.Source)
	if out.Extraction.Manifest != "" {
		_, _ = fmt.Fprintf(w, "\n# manifest\n%s", out.Extraction.Manifest)
	}
	return nil
}
