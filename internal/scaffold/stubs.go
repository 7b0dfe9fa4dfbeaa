package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Stub templates rendered into a freshly installed application directory.
// Placeholders are the uppercase tokens from AppType.StubVariables; sprig
// supplies the helper functions (default, upper, trim).
var stubs = map[string]string{
	"README.md": `# {{ .APP_NAME }}

{{ .APP_DESCRIPTION | default "A PHP application." }}

- Framework: {{ .FRAMEWORK }}
- PHP: {{ .PHP_VERSION }}
- Package: ` + "`{{ .APP_PACKAGE }}`" + `

## Development

Service containers are defined in this application's ` + "`docker-compose.yml`" + `:

    docker compose up -d

Application code is namespaced under ` + "`{{ .APP_NAMESPACE }}`" + `.
`,

	".editorconfig": `root = true

[*]
charset = utf-8
end_of_line = lf
indent_size = 4
indent_style = space
insert_final_newline = true
trim_trailing_whitespace = true

[*.{yml,yaml,json}]
indent_size = 2
`,

	".gitignore": `/vendor/
/node_modules/
.env
.env.local
.phpunit.result.cache
`,
}

// RenderStubs writes the stub files into dir, substituting vars. Files the
// framework installer already created are left alone.
func RenderStubs(dir string, vars map[string]string) error {
	for name, content := range stubs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}

		tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(content)
		if err != nil {
			return fmt.Errorf("stub %s: %w", name, err)
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			return fmt.Errorf("stub %s: %w", name, err)
		}
		execErr := tmpl.Execute(f, vars)
		closeErr := f.Close()
		if execErr != nil {
			return fmt.Errorf("stub %s: %w", name, execErr)
		}
		if closeErr != nil {
			return closeErr
		}
	}
	return nil
}
