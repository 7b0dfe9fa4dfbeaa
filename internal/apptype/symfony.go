package apptype

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
)

func init() {
	Register(func() AppType { return &Symfony{} })
}

// Symfony scaffolds a Symfony application from the skeleton or the full
// webapp pack.
type Symfony struct{}

func (sf *Symfony) Metadata() Metadata {
	return Metadata{
		Name:        "symfony",
		DisplayName: "Symfony",
		Description: "Symfony application (skeleton or webapp pack)",
	}
}

func (sf *Symfony) CollectConfiguration(appName string, s *Session) (*appconfig.ConfigMap, error) {
	cfg := appconfig.NewConfigMap()
	if err := s.collectBasics(appName, cfg); err != nil {
		return nil, err
	}

	version, err := s.resolveSelect("framework-version", "Symfony version", []prompt.Option{
		{Label: "7.2 (latest stable)", Value: "7.2"},
		{Label: "6.4 (LTS)", Value: "6.4"},
	}, "7.2")
	if err != nil {
		return nil, err
	}
	cfg.Set("symfony_version", version)

	webapp, err := s.resolveBool("webapp", "Install the full webapp pack (Twig, forms, security)?", true)
	if err != nil {
		return nil, err
	}
	cfg.Set("install_webapp", webapp)

	maker, err := s.resolveBool("maker", "Install the maker bundle for code generation?", true)
	if err != nil {
		return nil, err
	}
	cfg.Set("install_maker", maker)

	return cfg, nil
}

func (sf *Symfony) InstallCommand(cfg *appconfig.ConfigMap) (string, error) {
	return fmt.Sprintf("composer create-project symfony/skeleton:^%s %s",
		cfg.GetString("symfony_version"), cfg.GetString("app_slug")), nil
}

func (sf *Symfony) PreInstallCommands(cfg *appconfig.ConfigMap) []string {
	return nil
}

// PostInstallCommands: the webapp pack rewrites recipes and config, so it
// installs before any other package; migrations run last.
func (sf *Symfony) PostInstallCommands(cfg *appconfig.ConfigMap) []string {
	var commands []string

	if cfg.GetBool("install_webapp") {
		commands = append(commands, "composer require webapp --no-interaction")
	}
	if cfg.GetBool("install_maker") {
		commands = append(commands, "composer require symfony/maker-bundle --dev")
	}
	if cfg.Has("db_connection") {
		commands = append(commands,
			"composer require symfony/orm-pack --no-interaction",
			"php bin/console doctrine:migrations:migrate --no-interaction --allow-no-migration",
		)
	}
	return commands
}

func (sf *Symfony) StubVariables(cfg *appconfig.ConfigMap) map[string]string {
	return map[string]string{
		"APP_NAME":        cfg.GetString("app_name"),
		"APP_SLUG":        cfg.GetString("app_slug"),
		"APP_NAMESPACE":   cfg.GetString("app_namespace"),
		"APP_PACKAGE":     cfg.GetString("app_package"),
		"APP_DESCRIPTION": cfg.GetString("app_description"),
		"PHP_VERSION":     cfg.GetString("php_version"),
		"FRAMEWORK":       "symfony",
	}
}

func (sf *Symfony) InfrastructureOptions(cfg *appconfig.ConfigMap) service.Options {
	return service.Options{
		NeedsDatabase: true,
		Databases:     []string{"pgsql", "mysql", "mariadb"},
		NeedsCache:    true,
		NeedsQueue:    true,
		NeedsSearch:   true,
		SearchEngines: []string{service.SearchEngineNone, "meilisearch", "elasticsearch"},
		NeedsStorage:  true,
	}
}

func (sf *Symfony) WritableConfig(cfg *appconfig.ConfigMap) []appconfig.Operation {
	env := map[string]any{
		"APP_ENV": "dev",
	}

	if cfg.Has("db_connection") {
		env["DATABASE_URL"] = sf.databaseURL(cfg)
	}
	if cfg.GetBool("use_redis") {
		env["REDIS_URL"] = fmt.Sprintf("redis://%s:%s", cfg.GetString("redis_host"), cfg.GetString("redis_port"))
	}
	if cfg.GetBool("use_queue") {
		env["MESSENGER_TRANSPORT_DSN"] = fmt.Sprintf("amqp://%s:%s@%s:%s/%%2f/messages",
			cfg.GetString("queue_user"), cfg.GetString("queue_password"),
			cfg.GetString("queue_host"), cfg.GetString("queue_port"))
	}

	ops := []appconfig.Operation{
		appconfig.MustOperation(appconfig.ActionSet, ".env.local", env),
	}

	// Redis-backed sessions and cache go into the framework config; the
	// deep merge leaves unrelated framework settings alone.
	if cfg.GetBool("use_redis") {
		ops = append(ops, appconfig.MustOperation(appconfig.ActionMerge, "config/packages/framework.yaml", map[string]any{
			"framework": map[string]any{
				"session": map[string]any{
					"handler_id": "%env(REDIS_URL)%",
				},
				"cache": map[string]any{
					"app":                    "cache.adapter.redis",
					"default_redis_provider": "%env(REDIS_URL)%",
				},
			},
		}))
	}

	return ops
}

func (sf *Symfony) databaseURL(cfg *appconfig.ConfigMap) string {
	driver := cfg.GetString("db_connection")
	if driver == "mariadb" {
		driver = "mysql"
	}
	if driver == "pgsql" {
		driver = "postgresql"
	}
	return fmt.Sprintf("%s://%s:%s@%s:%s/%s",
		driver,
		cfg.GetString("db_user"), cfg.GetString("db_password"),
		cfg.GetString("db_host"), cfg.GetString("db_port"),
		cfg.GetString("db_name"))
}
