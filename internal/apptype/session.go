package apptype

import (
	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/naming"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
)

// Session is the transient prompting context for one collection run. It
// begins at configuration collection and is discarded once the command
// lists and config operations have been produced.
type Session struct {
	Prompter    prompt.Prompter
	Interactive bool

	// Flags maps flag names to raw CLI values; empty means not given.
	Flags map[string]string

	// Vendor is the Composer vendor prefix for derived package names.
	Vendor string

	Description string
}

func (s *Session) flag(name string) string {
	if s.Flags == nil {
		return ""
	}
	return s.Flags[name]
}

func (s *Session) vendor() string {
	if s.Vendor == "" {
		return "phphive"
	}
	return s.Vendor
}

// resolveString is the flag → prompt → default chain for one question.
func (s *Session) resolveString(flagName, title, description, defaultValue string) (string, error) {
	return prompt.String(s.flag(flagName), s.Interactive, func() (string, error) {
		return s.Prompter.Input(title, description, defaultValue, defaultValue)
	}, defaultValue)
}

func (s *Session) resolveBool(flagName, title string, defaultValue bool) (bool, error) {
	return prompt.Bool(s.flag(flagName), s.Interactive, func() (bool, error) {
		return s.Prompter.Confirm(title, "", defaultValue)
	}, defaultValue)
}

func (s *Session) resolveSelect(flagName, title string, options []prompt.Option, defaultValue string) (string, error) {
	return prompt.String(s.flag(flagName), s.Interactive, func() (string, error) {
		return s.Prompter.Select(title, "", options, defaultValue)
	}, defaultValue)
}

// collectBasics fills the keys every app type shares.
func (s *Session) collectBasics(appName string, cfg *appconfig.ConfigMap) error {
	slug := naming.Normalize(appName)
	cfg.Set("app_name", appName)
	cfg.Set("app_slug", slug)
	cfg.Set("app_namespace", naming.PascalCase(slug))
	cfg.Set("app_package", naming.PackageName(s.vendor(), slug))

	description, err := prompt.String(s.Description, s.Interactive, func() (string, error) {
		return s.Prompter.Input("Short description", "shown in composer.json and the README", "", "")
	}, "")
	if err != nil {
		return err
	}
	cfg.Set("app_description", description)

	phpVersion, err := s.resolveString("php-version", "PHP version", "", "8.3")
	if err != nil {
		return err
	}
	cfg.Set("php_version", phpVersion)
	return nil
}
