// Package config loads the monorepo-level phphive.yml settings.
package config

import "github.com/spf13/viper"

type Config struct {
	// Vendor is the Composer vendor prefix for derived package names.
	Vendor string `mapstructure:"vendor"`

	// TemplateDir optionally overrides the built-in compose fragments.
	TemplateDir string `mapstructure:"template_dir"`

	Defaults Defaults `mapstructure:"defaults"`
}

// Defaults are pre-answers for recurring questions. A default behaves like
// a CLI flag: it wins over the prompt but loses to an explicit flag.
type Defaults struct {
	Type       string `mapstructure:"type"`
	PHPVersion string `mapstructure:"php_version"`
	Database   string `mapstructure:"database"`
	Fallback   string `mapstructure:"fallback"` // manual or fatal
}

func Load() (*Config, error) {
	cfg := &Config{
		Vendor: "phphive",
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
