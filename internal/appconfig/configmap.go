// Package appconfig holds the configuration accumulated while scaffolding an
// application and the declarative file operations derived from it.
package appconfig

import "fmt"

// ConfigMap is an ordered string-keyed map built up through the collection
// pipeline. Writers may overwrite an existing key (last write wins); keys
// are never deleted during collection.
type ConfigMap struct {
	keys   []string
	values map[string]any
}

func NewConfigMap() *ConfigMap {
	return &ConfigMap{values: map[string]any{}}
}

// Set stores a value, preserving first-insertion order for the key.
func (m *ConfigMap) Set(key string, value any) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Merge copies every entry of other into m, shallow, last write wins.
func (m *ConfigMap) Merge(other *ConfigMap) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		m.Set(k, other.values[k])
	}
}

func (m *ConfigMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// GetString returns the value as a string, or "" when absent.
func (m *ConfigMap) GetString(key string) string {
	v, ok := m.values[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// GetBool returns the value as a bool, false when absent or not a bool.
func (m *ConfigMap) GetBool(key string) bool {
	v, ok := m.values[key].(bool)
	return ok && v
}

func (m *ConfigMap) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *ConfigMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *ConfigMap) Len() int { return len(m.keys) }
