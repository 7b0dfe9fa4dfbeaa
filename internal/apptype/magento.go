package apptype

import (
	"fmt"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/appconfig"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
)

func init() {
	Register(func() AppType { return &Magento{} })
}

// Magento scaffolds a Magento Open Source or Adobe Commerce store.
// Installing from repo.magento.com requires marketplace keys.
type Magento struct{}

func (m *Magento) Metadata() Metadata {
	return Metadata{
		Name:        "magento",
		DisplayName: "Magento",
		Description: "Magento 2 store (requires marketplace keys)",
	}
}

func (m *Magento) CollectConfiguration(appName string, s *Session) (*appconfig.ConfigMap, error) {
	cfg := appconfig.NewConfigMap()
	if err := s.collectBasics(appName, cfg); err != nil {
		return nil, err
	}

	edition, err := s.resolveSelect("edition", "Magento edition", []prompt.Option{
		{Label: "Open Source (community)", Value: "community"},
		{Label: "Adobe Commerce (enterprise)", Value: "enterprise"},
	}, "community")
	if err != nil {
		return nil, err
	}
	cfg.Set("magento_edition", edition)

	version, err := s.resolveString("framework-version", "Magento version constraint", "", "2.4.*")
	if err != nil {
		return nil, err
	}
	cfg.Set("magento_version", version)

	publicKey, err := s.resolveString("magento-public-key", "Marketplace public key", "from marketplace.magento.com access keys", "")
	if err != nil {
		return nil, err
	}
	cfg.Set("magento_public_key", publicKey)

	privateKey := s.flag("magento-private-key")
	if privateKey == "" && s.Interactive {
		privateKey, err = s.Prompter.Password("Marketplace private key", "never stored outside composer auth")
		if err != nil {
			return nil, err
		}
	}
	cfg.Set("magento_private_key", privateKey)

	adminUser, err := s.resolveString("admin-user", "Admin username", "", "admin")
	if err != nil {
		return nil, err
	}
	cfg.Set("admin_user", adminUser)

	adminEmail, err := s.resolveString("admin-email", "Admin email", "", "admin@example.com")
	if err != nil {
		return nil, err
	}
	cfg.Set("admin_email", adminEmail)

	adminPassword := s.flag("admin-password")
	if adminPassword == "" && s.Interactive {
		adminPassword, err = s.Prompter.Password("Admin password", "minimum 7 characters with letters and digits")
		if err != nil {
			return nil, err
		}
	}
	if adminPassword == "" {
		adminPassword = "admin123!"
	}
	cfg.Set("admin_password", adminPassword)

	locale, err := s.resolveString("locale", "Store locale", "", "en_US")
	if err != nil {
		return nil, err
	}
	cfg.Set("store_locale", locale)

	currency, err := s.resolveString("currency", "Store currency", "", "USD")
	if err != nil {
		return nil, err
	}
	cfg.Set("store_currency", currency)

	timezone, err := s.resolveString("timezone", "Store timezone", "", "America/Chicago")
	if err != nil {
		return nil, err
	}
	cfg.Set("store_timezone", timezone)

	return cfg, nil
}

// InstallCommand fails fast when marketplace keys are missing: composer
// would otherwise emit an authentication prompt mid-install.
func (m *Magento) InstallCommand(cfg *appconfig.ConfigMap) (string, error) {
	if cfg.GetString("magento_public_key") == "" || cfg.GetString("magento_private_key") == "" {
		return "", fmt.Errorf("magento marketplace keys are required: generate them at marketplace.magento.com and pass --magento-public-key/--magento-private-key")
	}

	project := "project-community-edition"
	if cfg.GetString("magento_edition") == "enterprise" {
		project = "project-enterprise-edition"
	}
	return fmt.Sprintf("composer create-project --repository-url=https://repo.magento.com/ magento/%s:%s %s",
		project, cfg.GetString("magento_version"), cfg.GetString("app_slug")), nil
}

// PreInstallCommands registers the marketplace keys with composer so the
// create-project call can authenticate.
func (m *Magento) PreInstallCommands(cfg *appconfig.ConfigMap) []string {
	pub := cfg.GetString("magento_public_key")
	priv := cfg.GetString("magento_private_key")
	if pub == "" || priv == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("composer global config http-basic.repo.magento.com %s %s", pub, priv),
	}
}

// PostInstallCommands: setup:install wires the database and admin account
// and must precede everything; reindex needs installed schema; cache flush
// runs last.
func (m *Magento) PostInstallCommands(cfg *appconfig.ConfigMap) []string {
	install := fmt.Sprintf(
		"bin/magento setup:install --base-url=http://%s.test/ --db-host=%s:%s --db-name=%s --db-user=%s --db-password=%s"+
			" --admin-firstname=Admin --admin-lastname=User --admin-email=%s --admin-user=%s --admin-password=%s"+
			" --language=%s --currency=%s --timezone=%s --use-rewrites=1",
		cfg.GetString("app_slug"),
		cfg.GetString("db_host"), cfg.GetString("db_port"), cfg.GetString("db_name"),
		cfg.GetString("db_user"), cfg.GetString("db_password"),
		cfg.GetString("admin_email"), cfg.GetString("admin_user"), cfg.GetString("admin_password"),
		cfg.GetString("store_locale"), cfg.GetString("store_currency"), cfg.GetString("store_timezone"),
	)

	if engine := cfg.GetString("search_engine"); engine == "elasticsearch" || engine == "opensearch" {
		install += fmt.Sprintf(" --search-engine=%s7 --elasticsearch-host=%s --elasticsearch-port=%s",
			engine, cfg.GetString("search_host"), cfg.GetString("search_port"))
	}
	if cfg.GetBool("use_queue") {
		install += fmt.Sprintf(" --amqp-host=%s --amqp-port=%s --amqp-user=%s --amqp-password=%s",
			cfg.GetString("queue_host"), cfg.GetString("queue_port"),
			cfg.GetString("queue_user"), cfg.GetString("queue_password"))
	}

	commands := []string{install, "bin/magento deploy:mode:set developer"}
	commands = append(commands, "bin/magento indexer:reindex", "bin/magento cache:flush")
	return commands
}

func (m *Magento) StubVariables(cfg *appconfig.ConfigMap) map[string]string {
	return map[string]string{
		"APP_NAME":        cfg.GetString("app_name"),
		"APP_SLUG":        cfg.GetString("app_slug"),
		"APP_NAMESPACE":   cfg.GetString("app_namespace"),
		"APP_PACKAGE":     cfg.GetString("app_package"),
		"APP_DESCRIPTION": cfg.GetString("app_description"),
		"PHP_VERSION":     cfg.GetString("php_version"),
		"FRAMEWORK":       "magento",
	}
}

// InfrastructureOptions: Magento always needs a database and a search
// engine; "none" is not offered for search.
func (m *Magento) InfrastructureOptions(cfg *appconfig.ConfigMap) service.Options {
	return service.Options{
		NeedsDatabase: true,
		Databases:     []string{"mysql", "mariadb"},
		NeedsCache:    true,
		NeedsQueue:    true,
		NeedsSearch:   true,
		SearchEngines: []string{"opensearch", "elasticsearch"},
		NeedsStorage:  false,
	}
}

func (m *Magento) WritableConfig(cfg *appconfig.ConfigMap) []appconfig.Operation {
	// setup:install writes app/etc/env.php itself; only the dev-server
	// conveniences live in .env here.
	env := map[string]any{
		"MAGE_MODE": "developer",
	}
	if cfg.GetBool("use_redis") {
		env["CACHE_HOST"] = cfg.GetString("redis_host")
		env["CACHE_PORT"] = cfg.GetString("redis_port")
	}
	return []appconfig.Operation{
		appconfig.MustOperation(appconfig.ActionSet, ".env", env),
	}
}
