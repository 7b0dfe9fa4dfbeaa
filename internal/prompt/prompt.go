// Package prompt provides interactive input collection and flag/prompt/default
// resolution for scaffolding questions.
package prompt

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Option is one choice in a select prompt.
type Option struct {
	Label string
	Value string
}

// Prompter asks the user for values. Implementations must return an error
// (not a default) when input cannot be read, e.g. on end-of-input.
type Prompter interface {
	Input(title, description, placeholder, defaultValue string) (string, error)
	Password(title, description string) (string, error)
	Confirm(title, description string, defaultValue bool) (bool, error)
	Select(title, description string, options []Option, defaultValue string) (string, error)
}

// HuhPrompter renders prompts as single-field huh forms.
type HuhPrompter struct{}

func (HuhPrompter) Input(title, description, placeholder, defaultValue string) (string, error) {
	value := defaultValue
	field := huh.NewInput().
		Title(title).
		Description(description).
		Placeholder(placeholder).
		Value(&value)
	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt %q: %w", title, err)
	}
	return value, nil
}

func (HuhPrompter) Password(title, description string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Description(description).
		EchoMode(huh.EchoModePassword).
		Value(&value)
	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt %q: %w", title, err)
	}
	return value, nil
}

func (HuhPrompter) Confirm(title, description string, defaultValue bool) (bool, error) {
	value := defaultValue
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Value(&value)
	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, fmt.Errorf("prompt %q: %w", title, err)
	}
	return value, nil
}

func (HuhPrompter) Select(title, description string, options []Option, defaultValue string) (string, error) {
	value := defaultValue
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value).Selected(o.Value == defaultValue))
	}
	field := huh.NewSelect[string]().
		Title(title).
		Description(description).
		Options(opts...).
		Value(&value)
	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt %q: %w", title, err)
	}
	return value, nil
}
