package apptype

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
)

func init() {
	Register(func() AppType { return &Skeleton{} })
}

// Skeleton scaffolds a bare Composer package for the monorepo: composer
// init, PSR-4 autoloading, and nothing else. No infrastructure is offered
// by default.
type Skeleton struct{}

func (sk *Skeleton) Metadata() Metadata {
	return Metadata{
		Name:        "skeleton",
		DisplayName: "Skeleton package",
		Description: "Minimal Composer package with PSR-4 autoloading",
	}
}

func (sk *Skeleton) CollectConfiguration(appName string, s *Session) (*appconfig.ConfigMap, error) {
	cfg := appconfig.NewConfigMap()
	if err := s.collectBasics(appName, cfg); err != nil {
		return nil, err
	}

	withTests, err := s.resolveBool("phpunit", "Add a PHPUnit test setup?", true)
	if err != nil {
		return nil, err
	}
	cfg.Set("install_phpunit", withTests)

	return cfg, nil
}

func (sk *Skeleton) InstallCommand(cfg *appconfig.ConfigMap) (string, error) {
	return fmt.Sprintf(
		"composer init --no-interaction --working-dir=%s --name=%s --description=%q --type=library --autoload=src/ --require=php:^%s",
		cfg.GetString("app_slug"),
		cfg.GetString("app_package"),
		cfg.GetString("app_description"),
		cfg.GetString("php_version"),
	), nil
}

func (sk *Skeleton) PreInstallCommands(cfg *appconfig.ConfigMap) []string {
	return nil
}

func (sk *Skeleton) PostInstallCommands(cfg *appconfig.ConfigMap) []string {
	var commands []string
	if cfg.GetBool("install_phpunit") {
		commands = append(commands, "composer require phpunit/phpunit --dev")
	}
	commands = append(commands, "composer install")
	return commands
}

func (sk *Skeleton) StubVariables(cfg *appconfig.ConfigMap) map[string]string {
	return map[string]string{
		"APP_NAME":        cfg.GetString("app_name"),
		"APP_SLUG":        cfg.GetString("app_slug"),
		"APP_NAMESPACE":   cfg.GetString("app_namespace"),
		"APP_PACKAGE":     cfg.GetString("app_package"),
		"APP_DESCRIPTION": cfg.GetString("app_description"),
		"PHP_VERSION":     cfg.GetString("php_version"),
		"FRAMEWORK":       "skeleton",
	}
}

func (sk *Skeleton) InfrastructureOptions(cfg *appconfig.ConfigMap) service.Options {
	return service.Options{}
}

func (sk *Skeleton) WritableConfig(cfg *appconfig.ConfigMap) []appconfig.Operation {
	return nil
}
