package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/litgen/internal/config"
	"git.home.luguber.info/inful/litgen/internal/foundation/errors"
)

// DependenciesHeader opens the dependency table of the manifest.
const DependenciesHeader = "[dependencies]"

const manifestTemplate = `[package]
name = "{{ .Name }}"
version = "{{ .Version }}"
edition = "{{ .Edition }}"

{{ .Dependencies }}`

var manifestTmpl = template.Must(template.New("manifest").Option("missingkey=error").Parse(manifestTemplate))

// RenderManifest renders the generator's package manifest.
//
// The dependency table is the declared manifest fragment when there is one.
// Otherwise it pins the framework crates from fw; a configured development
// checkout replaces the published yang release with a path dependency.
func RenderManifest(declared string, fw config.FrameworkConfig) (string, error) {
	data := struct {
		Name, Version, Edition string
		Dependencies           string
	}{
		Name:         fw.PackageName,
		Version:      fw.PackageVersion,
		Edition:      fw.Edition,
		Dependencies: dependencies(declared, fw),
	}

	var buf bytes.Buffer
	if err := manifestTmpl.Execute(&buf, data); err != nil {
		return "", errors.InternalError(fmt.Sprintf("render manifest: %v", err)).WithCause(err).Build()
	}
	return buf.String(), nil
}

func dependencies(declared string, fw config.FrameworkConfig) string {
	if strings.TrimSpace(declared) != "" {
		if !strings.HasSuffix(declared, "\n") {
			declared += "\n"
		}
		if hasTableHeader(declared, DependenciesHeader) {
			return declared
		}
		return DependenciesHeader + "\n" + declared
	}
	return DefaultDependencies(fw)
}

// DefaultDependencies is the dependency table used when the document declares
// no manifest fragment.
func DefaultDependencies(fw config.FrameworkConfig) string {
	return fmt.Sprintf("%s\nzamm_yin = %q\nzamm_yang = %s\n", DependenciesHeader, fw.YinVersion, yangDependency(fw))
}

func yangDependency(fw config.FrameworkConfig) string {
	if fw.DevDir == "" {
		return fmt.Sprintf("%q", fw.YangVersion)
	}
	return fmt.Sprintf("{path = %q}", strings.ReplaceAll(fw.DevDir, `\`, "/"))
}

func hasTableHeader(toml, header string) bool {
	for _, line := range strings.Split(toml, "\n") {
		if strings.TrimSpace(line) == header {
			return true
		}
	}
	return false
}
