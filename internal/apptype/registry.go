// Package apptype implements per-framework configuration collection and
// command generation for scaffolded applications.
package apptype

import (
	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
)

// Metadata describes an app type for selection and documentation.
type Metadata struct {
	Name        string // internal key, e.g. "laravel"
	DisplayName string // human-readable, e.g. "Laravel"
	Description string // one-line description
}

// AppType defines one scaffoldable framework. Collectors are stateless;
// everything they produce derives from the session and the accumulated
// config map.
type AppType interface {
	Metadata() Metadata

	// CollectConfiguration gathers framework-specific answers. Runs before
	// the application directory exists; infrastructure collection happens
	// separately after install.
	CollectConfiguration(appName string, s *Session) (*appconfig.ConfigMap, error)

	// InstallCommand builds the create-project invocation. Returns an
	// error when required credentials are missing rather than emitting an
	// invalid command.
	InstallCommand(cfg *appconfig.ConfigMap) (string, error)

	// PreInstallCommands run before the install command (e.g. package
	// source authentication). Usually empty.
	PreInstallCommands(cfg *appconfig.ConfigMap) []string

	// PostInstallCommands run inside the new application directory, in
	// dependency order. Reordering the returned list breaks the generated
	// project.
	PostInstallCommands(cfg *appconfig.ConfigMap) []string

	// StubVariables derives template placeholders from config. Pure.
	StubVariables(cfg *appconfig.ConfigMap) map[string]string

	// InfrastructureOptions declares which subsystems this framework
	// wants offered.
	InfrastructureOptions(cfg *appconfig.ConfigMap) service.Options

	// WritableConfig emits the declarative file operations applied after
	// installation, conditional on which subsystems were configured.
	WritableConfig(cfg *appconfig.ConfigMap) []appconfig.Operation
}

var registry []func() AppType

// Register adds an app type factory. Each app type calls this in its init().
func Register(factory func() AppType) {
	registry = append(registry, factory)
}

// All returns fresh instances of every registered app type.
func All() []AppType {
	out := make([]AppType, len(registry))
	for i, f := range registry {
		out[i] = f()
	}
	return out
}

// Find returns the app type registered under name.
func Find(name string) (AppType, bool) {
	for _, f := range registry {
		at := f()
		if at.Metadata().Name == name {
			return at, true
		}
	}
	return nil, false
}
