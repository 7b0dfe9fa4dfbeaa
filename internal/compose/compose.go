// Package compose renders docker-compose service fragments and merges them
// into an application's compose file.
package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/compose-spec/compose-go/v2/cli"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultFile is the compose file name written at the application root.
const DefaultFile = "docker-compose.yml"

// Substitute replaces {{TOKEN}} placeholders in a fragment template.
// Tokens are uppercase with underscores; anything else is left untouched.
func Substitute(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// LoadTemplate returns the contents of an override template file when one
// exists, otherwise the built-in inline template.
func LoadTemplate(templateDir, name, inline string) string {
	if templateDir == "" {
		return inline
	}
	data, err := os.ReadFile(filepath.Join(templateDir, name+".yml"))
	if err != nil {
		return inline
	}
	return string(data)
}

// ServiceNames lists the service names declared in a compose file. It tries
// compose-go first and falls back to a raw YAML parse for files compose-go
// rejects.
func ServiceNames(path string) ([]string, error) {
	opts, err := cli.NewProjectOptions(
		[]string{path},
		cli.WithDotEnv,
		cli.WithInterpolation(false),
	)
	if err == nil {
		if project, err := cli.ProjectFromOptions(context.Background(), opts); err == nil {
			names := make([]string, 0, len(project.Services))
			for _, svc := range project.Services {
				names = append(names, svc.Name)
			}
			return names, nil
		}
	}
	return serviceNamesFallback(path)
}

func serviceNamesFallback(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yamlv3.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}

	services, ok := raw["services"].(map[string]any)
	if !ok {
		return nil, nil
	}
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	return names, nil
}

// Merge adds a rendered service fragment to the compose file at path. The
// fragment is an indented service block without the top-level "services:"
// key. When the file does not exist it is created; when it already declares
// serviceName the file is left byte-identical and Merge reports no change.
// Compose files written by this tool only carry a services section, so a
// plain append keeps the YAML well-formed.
func Merge(path, serviceName, fragment string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		content := "services:\n" + ensureTrailingNewline(fragment)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return false, fmt.Errorf("writing compose file: %w", err)
		}
		return true, nil
	}

	names, err := ServiceNames(path)
	if err != nil {
		return false, fmt.Errorf("reading compose file: %w", err)
	}
	for _, n := range names {
		if n == serviceName {
			return false, nil
		}
	}

	existing, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	content := ensureTrailingNewline(string(existing)) + ensureTrailingNewline(fragment)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("appending to compose file: %w", err)
	}
	return true, nil
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
