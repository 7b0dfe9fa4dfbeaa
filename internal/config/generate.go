package config

import (
	"bytes"
	"text/template"
)

const fileTemplate = `# phphive configuration
# Applies to every application scaffolded in this monorepo.

vendor: {{ .Vendor }}
{{- if .TemplateDir }}
template_dir: {{ .TemplateDir }}
{{- end }}

defaults:
  type: {{ .Defaults.Type }}
  php_version: "{{ .Defaults.PHPVersion }}"
{{- if .Defaults.Database }}
  database: {{ .Defaults.Database }}
{{- end }}
{{- if .Defaults.Fallback }}
  fallback: {{ .Defaults.Fallback }}
{{- end }}
`

// Generate renders the phphive.yml content for cfg.
func Generate(cfg Config) (string, error) {
	tmpl, err := template.New("config").Parse(fileTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return "", err
	}
	return buf.String(), nil
}
