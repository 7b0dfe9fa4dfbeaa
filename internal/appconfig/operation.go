package appconfig

import "fmt"

// Action is the kind of file mutation an Operation performs.
type Action string

const (
	// ActionSet updates or appends key=value pairs in an env-style file.
	ActionSet Action = "set"
	// ActionAppend appends key=value pairs without touching existing keys.
	ActionAppend Action = "append"
	// ActionMerge deep-merges a nested block into a YAML config file.
	ActionMerge Action = "merge"
)

// Operation is one declarative mutation of a named config file. Instances
// are only created through NewOperation, which rejects unknown actions, so
// a held Operation is always valid.
type Operation struct {
	action Action
	file   string
	values map[string]any
}

// NewOperation validates the action at construction time.
func NewOperation(action Action, file string, values map[string]any) (Operation, error) {
	switch action {
	case ActionSet, ActionAppend, ActionMerge:
	default:
		return Operation{}, fmt.Errorf("appconfig: unknown operation action %q", action)
	}
	return Operation{action: action, file: file, values: values}, nil
}

// MustOperation is NewOperation for statically known actions.
func MustOperation(action Action, file string, values map[string]any) Operation {
	op, err := NewOperation(action, file, values)
	if err != nil {
		panic(err)
	}
	return op
}

func (o Operation) Action() Action         { return o.action }
func (o Operation) File() string           { return o.file }
func (o Operation) Values() map[string]any { return o.values }
