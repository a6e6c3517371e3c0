package codegen

import (
	"bytes"
	"fmt"
	"text/template"

	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
	"git.home.luguber.info/inful/litgen/internal/markdown"
)

// Sentinel comments delimiting the inlined literate source.
const (
	SourceStartSentinel = "// ------------------------ START OF LITERATE RUST -------------------------"
	SourceEndSentinel   = "// -------------------------- END OF LITERATE RUST -------------------------"
)

// preludeImports are always re-exported by the generated entry point.
var preludeImports = []string{
	"zamm_yin::tao::Tao",
	"zamm_yin::tao::archetype::ArchetypeTrait",
	"zamm_yin::tao::archetype::ArchetypeFormTrait",
	"zamm_yin::tao::archetype::AttributeArchetype",
	"zamm_yin::tao::form::FormTrait",
	"zamm_yin::node_wrappers::CommonNodeTrait",
	"zamm_yang::codegen::CodegenConfig",
	"zamm_yang::tao::callbacks::handle_all_implementations",
	"zamm_yang::tao::initialize_kb",
	"zamm_yang::tao::Implement",
	"zamm_yang::tao::ImplementConfig",
	"zamm_yang::tao::archetype::CodegenFlags",
	"zamm_yang::tao::form::DefinedMarker",
	"zamm_yang::tao::form::data::DataExtension",
	"zamm_yang::tao::archetype::CreateImplementation",
	"zamm_yang::define",
	"zamm_yang::helper::aa",
}

const entryTemplate = `#![allow(dead_code, unused_imports)]

{{ range .Prelude }}pub use {{ . }};
{{ end }}{{ range .Uses }}pub use {{ . }};
{{ end }}
fn main() {
    let codegen_cfg = CodegenConfig {
        comment_autogen: {{ .Config.CommentAutogen }},
        add_rustfmt_attributes: {{ .Config.FormatAttributes }},
        track_autogen: {{ .Config.TrackAutogen }},
        yin: {{ .Config.TargetFlavor }},
        release: {{ .Config.Release }},
    };

    initialize_kb();
    {{ .StartSentinel }}
{{ range .Fragments }}{{ . }}
{{ end }}    {{ .EndSentinel }}
    handle_all_implementations(&codegen_cfg);
}
`

var entryTmpl = template.Must(template.New("entry").Option("missingkey=error").Parse(entryTemplate))

// RenderEntry renders the generator's main source file. Import paths are
// emitted as re-exports after the framework prelude; fragments are inlined
// verbatim between the sentinel comments.
func RenderEntry(code markdown.EntryCode, cfg GenerationConfig) (string, error) {
	data := struct {
		Prelude       []string
		Uses          []string
		Fragments     []string
		Config        GenerationConfig
		StartSentinel string
		EndSentinel   string
	}{
		Prelude:       preludeImports,
		Uses:          code.Uses,
		Fragments:     code.Fragments,
		Config:        cfg,
		StartSentinel: SourceStartSentinel,
		EndSentinel:   SourceEndSentinel,
	}

	var buf bytes.Buffer
	if err := entryTmpl.Execute(&buf, data); err != nil {
		return "", errors.InternalError(fmt.Sprintf("render entry point: %v", err)).WithCause(err).Build()
	}
	return buf.String(), nil
}
