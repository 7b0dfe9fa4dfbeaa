package apptype

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
)

func init() {
	Register(func() AppType { return &Laravel{} })
}

// Laravel scaffolds a Laravel application.
type Laravel struct{}

func (l *Laravel) Metadata() Metadata {
	return Metadata{
		Name:        "laravel",
		DisplayName: "Laravel",
		Description: "Full-stack Laravel application with optional starter kit",
	}
}

func (l *Laravel) CollectConfiguration(appName string, s *Session) (*appconfig.ConfigMap, error) {
	cfg := appconfig.NewConfigMap()
	if err := s.collectBasics(appName, cfg); err != nil {
		return nil, err
	}

	version, err := s.resolveSelect("framework-version", "Laravel version", []prompt.Option{
		{Label: "12.x (latest)", Value: "12"},
		{Label: "11.x", Value: "11"},
		{Label: "10.x (LTS window)", Value: "10"},
	}, "12")
	if err != nil {
		return nil, err
	}
	cfg.Set("laravel_version", version)

	starterKit, err := s.resolveSelect("starter-kit", "Starter kit", []prompt.Option{
		{Label: "None", Value: "none"},
		{Label: "Breeze (minimal auth scaffolding)", Value: "breeze"},
		{Label: "Jetstream (teams, 2FA)", Value: "jetstream"},
	}, "none")
	if err != nil {
		return nil, err
	}
	cfg.Set("starter_kit", starterKit)

	sanctum, err := s.resolveBool("sanctum", "Install Sanctum for API token auth?", false)
	if err != nil {
		return nil, err
	}
	cfg.Set("install_sanctum", sanctum)

	telescope, err := s.resolveBool("telescope", "Install Telescope for local debugging?", false)
	if err != nil {
		return nil, err
	}
	cfg.Set("install_telescope", telescope)

	horizon, err := s.resolveBool("horizon", "Install Horizon for queue monitoring?", false)
	if err != nil {
		return nil, err
	}
	cfg.Set("install_horizon", horizon)

	mailHost, err := s.resolveString("mail-host", "SMTP host for outgoing mail", "leave empty to skip mail configuration", "")
	if err != nil {
		return nil, err
	}
	if mailHost != "" {
		cfg.Set("mail_host", mailHost)
	}

	return cfg, nil
}

func (l *Laravel) InstallCommand(cfg *appconfig.ConfigMap) (string, error) {
	return fmt.Sprintf("composer create-project --prefer-dist laravel/laravel:^%s.0 %s",
		cfg.GetString("laravel_version"), cfg.GetString("app_slug")), nil
}

func (l *Laravel) PreInstallCommands(cfg *appconfig.ConfigMap) []string {
	return nil
}

// PostInstallCommands returns the setup commands in dependency order:
// the app key must exist before anything that encrypts, the starter kit
// must land before add-on packages publish routes on top of it, and
// migrations always run last so every package's tables are known.
func (l *Laravel) PostInstallCommands(cfg *appconfig.ConfigMap) []string {
	commands := []string{
		"php artisan key:generate --ansi",
	}

	switch cfg.GetString("starter_kit") {
	case "breeze":
		commands = append(commands,
			"composer require laravel/breeze --dev",
			"php artisan breeze:install blade --no-interaction",
		)
	case "jetstream":
		commands = append(commands,
			"composer require laravel/jetstream",
			"php artisan jetstream:install livewire --no-interaction",
		)
	}

	if cfg.GetBool("install_sanctum") {
		commands = append(commands,
			"composer require laravel/sanctum",
			`php artisan vendor:publish --provider="Laravel\Sanctum\SanctumServiceProvider"`,
		)
	}
	if cfg.GetBool("install_telescope") {
		commands = append(commands,
			"composer require laravel/telescope --dev",
			"php artisan telescope:install",
		)
	}
	if cfg.GetBool("install_horizon") {
		commands = append(commands,
			"composer require laravel/horizon",
			"php artisan horizon:install",
		)
	}

	commands = append(commands, "php artisan migrate --force")
	return commands
}

func (l *Laravel) StubVariables(cfg *appconfig.ConfigMap) map[string]string {
	return map[string]string{
		"APP_NAME":        cfg.GetString("app_name"),
		"APP_SLUG":        cfg.GetString("app_slug"),
		"APP_NAMESPACE":   cfg.GetString("app_namespace"),
		"APP_PACKAGE":     cfg.GetString("app_package"),
		"APP_DESCRIPTION": cfg.GetString("app_description"),
		"PHP_VERSION":     cfg.GetString("php_version"),
		"FRAMEWORK":       "laravel",
	}
}

func (l *Laravel) InfrastructureOptions(cfg *appconfig.ConfigMap) service.Options {
	return service.Options{
		NeedsDatabase: true,
		Databases:     []string{"mysql", "mariadb", "pgsql"},
		NeedsCache:    true,
		NeedsQueue:    true,
		NeedsSearch:   true,
		SearchEngines: []string{service.SearchEngineNone, "meilisearch", "elasticsearch", "typesense"},
		NeedsStorage:  true,
	}
}

func (l *Laravel) WritableConfig(cfg *appconfig.ConfigMap) []appconfig.Operation {
	env := map[string]any{
		"APP_NAME": cfg.GetString("app_name"),
	}

	if cfg.Has("db_connection") {
		env["DB_CONNECTION"] = cfg.GetString("db_connection")
		env["DB_HOST"] = cfg.GetString("db_host")
		env["DB_PORT"] = cfg.GetString("db_port")
		env["DB_DATABASE"] = cfg.GetString("db_name")
		env["DB_USERNAME"] = cfg.GetString("db_user")
		env["DB_PASSWORD"] = cfg.GetString("db_password")
	}

	if cfg.GetBool("use_redis") {
		env["CACHE_STORE"] = "redis"
		env["SESSION_DRIVER"] = "redis"
		env["REDIS_HOST"] = cfg.GetString("redis_host")
		env["REDIS_PORT"] = cfg.GetString("redis_port")
		if pw := cfg.GetString("redis_password"); pw != "" {
			env["REDIS_PASSWORD"] = pw
		}
	}

	if cfg.GetBool("use_queue") {
		env["QUEUE_CONNECTION"] = "rabbitmq"
		env["RABBITMQ_HOST"] = cfg.GetString("queue_host")
		env["RABBITMQ_PORT"] = cfg.GetString("queue_port")
		env["RABBITMQ_USER"] = cfg.GetString("queue_user")
		env["RABBITMQ_PASSWORD"] = cfg.GetString("queue_password")
		env["RABBITMQ_VHOST"] = cfg.GetString("queue_vhost")
	}

	switch cfg.GetString("search_engine") {
	case "meilisearch":
		env["SCOUT_DRIVER"] = "meilisearch"
		env["MEILISEARCH_HOST"] = fmt.Sprintf("http://%s:%s", cfg.GetString("search_host"), cfg.GetString("search_port"))
		env["MEILISEARCH_KEY"] = cfg.GetString("search_key")
	case "elasticsearch", "opensearch":
		env["SCOUT_DRIVER"] = "elastic"
		env["ELASTICSEARCH_HOST"] = fmt.Sprintf("http://%s:%s", cfg.GetString("search_host"), cfg.GetString("search_port"))
	case "typesense":
		env["SCOUT_DRIVER"] = "typesense"
		env["TYPESENSE_HOST"] = cfg.GetString("search_host")
		env["TYPESENSE_PORT"] = cfg.GetString("search_port")
		env["TYPESENSE_API_KEY"] = cfg.GetString("search_key")
	}

	if cfg.GetBool("use_minio") {
		env["FILESYSTEM_DISK"] = "s3"
		env["AWS_ACCESS_KEY_ID"] = cfg.GetString("minio_access_key")
		env["AWS_SECRET_ACCESS_KEY"] = cfg.GetString("minio_secret_key")
		env["AWS_DEFAULT_REGION"] = "us-east-1"
		env["AWS_BUCKET"] = cfg.GetString("minio_bucket")
		env["AWS_ENDPOINT"] = fmt.Sprintf("http://%s:%s", cfg.GetString("minio_host"), cfg.GetString("minio_port"))
		env["AWS_USE_PATH_STYLE_ENDPOINT"] = "true"
	}

	if cfg.Has("mail_host") {
		env["MAIL_MAILER"] = "smtp"
		env["MAIL_HOST"] = cfg.GetString("mail_host")
		env["MAIL_PORT"] = "587"
	}

	return []appconfig.Operation{
		appconfig.MustOperation(appconfig.ActionSet, ".env", env),
	}
}
