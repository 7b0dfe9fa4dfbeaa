package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Writer applies Operations to files under an application directory.
// The operation list is produced by the app-type collectors; applying it is
// the last step of a scaffolding run, after all install commands finished.
type Writer struct {
	BaseDir string
}

// Apply runs every operation in order. The first failure aborts the rest:
// continuing would leave the application half-configured.
func (w *Writer) Apply(ops []Operation) error {
	for _, op := range ops {
		path := filepath.Join(w.BaseDir, op.File())
		var err error
		switch op.Action() {
		case ActionSet:
			err = w.applyEnvSet(path, op.Values(), true)
		case ActionAppend:
			err = w.applyEnvSet(path, op.Values(), false)
		case ActionMerge:
			err = w.applyYAMLMerge(path, op.Values())
		}
		if err != nil {
			return fmt.Errorf("applying %s to %s: %w", op.Action(), op.File(), err)
		}
	}
	return nil
}

// applyEnvSet updates key=value pairs in an env-style file, preserving
// existing line order and comments. With overwrite, existing keys are
// updated in place; otherwise they are left alone. Missing keys are
// appended at the end in sorted order.
func (w *Writer) applyEnvSet(path string, values map[string]any, overwrite bool) error {
	var lines []string
	if data, err := os.ReadFile(path); err == nil {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	} else if !os.IsNotExist(err) {
		return err
	}

	pending := make(map[string]string, len(values))
	for k, v := range values {
		pending[k] = envValue(v)
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, _, found := strings.Cut(trimmed, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if val, ok := pending[key]; ok {
			if overwrite {
				lines[i] = key + "=" + val
			}
			delete(pending, key)
		}
	}

	remaining := make([]string, 0, len(pending))
	for k := range pending {
		remaining = append(remaining, k)
	}
	sort.Strings(remaining)
	for _, k := range remaining {
		lines = append(lines, k+"="+pending[k])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// applyYAMLMerge deep-merges values into a YAML file without clobbering
// unrelated existing keys. Nested maps merge recursively; anything else is
// replaced by the incoming value.
func (w *Writer) applyYAMLMerge(path string, values map[string]any) error {
	existing := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &existing); err != nil {
			return fmt.Errorf("yaml parse: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	merged := deepMerge(existing, values)

	out, err := yaml.Marshal(merged)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

func deepMerge(dst map[string]any, src map[string]any) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}
	for k, v := range src {
		if srcMap, ok := toStringMap(v); ok {
			if dstMap, ok := toStringMap(dst[k]); ok {
				dst[k] = deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	}
	return nil, false
}

func envValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if strings.ContainsAny(s, " #\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
