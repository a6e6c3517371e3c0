// Package markdown extracts tagged code fragments from literate Markdown
// documents.
//
// Fenced code blocks are classified by the language in their info string:
// `rust` blocks feed the source buffer, `toml` blocks feed the manifest
// buffer, and everything else is prose as far as litgen is concerned. Import
// declarations (other literate documents to prepend) are read from the
// `imports:` key of the YAML front matter.
package markdown
