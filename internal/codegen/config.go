// Package codegen renders the entry point and manifest of the intermediate
// generator program.
package codegen

// GenerationConfig carries the flags handed to the generator framework at
// run time. It is a value type; callers copy it rather than share it.
type GenerationConfig struct {
	CommentAutogen   bool // annotate generated files as autogenerated
	TrackAutogen     bool // record which files were autogenerated
	TargetFlavor     bool // generate for the base framework ("yin") instead of user code
	Release          bool // generate release-mode output
	FormatAttributes bool // emit formatter attributes on generated code
}

// DefaultGenerationConfig returns the flags used when the caller sets none.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		CommentAutogen:   true,
		FormatAttributes: true,
	}
}
