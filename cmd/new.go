package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/apptype"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/config"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/docker"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/runner"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/scaffold"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/service"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

var (
	appType       string
	description   string
	vendor        string
	noInteraction bool
	fallback      string
)

var newCmd = &cobra.Command{
	Use:   "new <app-name>",
	Short: "Scaffold a new application in the monorepo",
	Long: `Create an application under apps/: collect configuration, install the
framework, provision infrastructure, and write the environment files.

Every question can be pre-answered with a flag; --no-interaction answers
all remaining questions with their defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	f := newCmd.Flags()
	f.StringVarP(&appType, "type", "t", "", "app type: laravel, symfony, magento, skeleton")
	f.StringVarP(&description, "description", "d", "", "short application description")
	f.StringVar(&vendor, "vendor", "", "composer vendor prefix (default from phphive.yml)")
	f.BoolVarP(&noInteraction, "no-interaction", "n", false, "never prompt, use flags and defaults")
	f.StringVar(&fallback, "fallback", "", "policy for unreachable local services: manual, fatal")

	// Framework questions. Unset flags fall through to the prompt.
	f.String("php-version", "", "PHP version constraint")
	f.String("framework-version", "", "framework version")
	f.String("starter-kit", "", "laravel starter kit: none, breeze, jetstream")
	f.String("sanctum", "", "install Sanctum (true/false)")
	f.String("telescope", "", "install Telescope (true/false)")
	f.String("horizon", "", "install Horizon (true/false)")
	f.String("mail-host", "", "SMTP host for outgoing mail")
	f.String("webapp", "", "install the Symfony webapp pack (true/false)")
	f.String("maker", "", "install the Symfony maker bundle (true/false)")
	f.String("phpunit", "", "add a PHPUnit setup to skeleton packages (true/false)")
	f.String("edition", "", "magento edition: community, enterprise")
	f.String("magento-public-key", "", "magento marketplace public key")
	f.String("magento-private-key", "", "magento marketplace private key")
	f.String("admin-user", "", "admin username")
	f.String("admin-email", "", "admin email")
	f.String("admin-password", "", "admin password")
	f.String("locale", "", "store locale")
	f.String("currency", "", "store currency")
	f.String("timezone", "", "store timezone")

	// Infrastructure questions.
	f.String("database", "", "database engine: mysql, mariadb, pgsql")
	f.String("database-docker", "", "run the database in Docker (true/false)")
	f.String("cache", "", "set up Redis (true/false)")
	f.String("cache-docker", "", "run Redis in Docker (true/false)")
	f.String("queue", "", "set up RabbitMQ (true/false)")
	f.String("queue-docker", "", "run RabbitMQ in Docker (true/false)")
	f.String("search", "", "search engine: none, meilisearch, elasticsearch, opensearch, typesense")
	f.String("search-docker", "", "run the search engine in Docker (true/false)")
	f.String("storage", "", "set up MinIO object storage (true/false)")
	f.String("storage-docker", "", "run MinIO in Docker (true/false)")
	f.String("template-dir", "", "directory with compose fragment overrides")
}

func runNew(cmd *cobra.Command, args []string) error {
	appName := args[0]
	interactive := !noInteraction

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "check phphive.yml syntax"))
		return err
	}

	flags := changedFlags(cmd)
	applyConfigDefaults(flags, cfg)

	at, err := selectAppType(flags["type"], interactive)
	if err != nil {
		return err
	}

	if vendor == "" {
		vendor = cfg.Vendor
	}

	session := &apptype.Session{
		Prompter:    prompt.HuhPrompter{},
		Interactive: interactive,
		Flags:       flags,
		Vendor:      vendor,
		Description: description,
	}

	r := &runner.ExecRunner{Timeout: 15 * time.Minute}
	pipeline := &scaffold.Pipeline{
		Runner: r,
		Env: &service.Env{
			Prompter:    prompt.HuhPrompter{},
			Docker:      docker.NewHelper(r),
			Interactive: interactive,
			Quiet:       quiet,
			Flags:       flags,
			TemplateDir: flags["template-dir"],
		},
		BaseDir:  ".",
		Quiet:    quiet,
		Fallback: service.FallbackPolicy(flags["fallback"]),
	}

	result, err := pipeline.Run(at, appName, session)
	if err != nil {
		var setupErr *service.SetupError
		if errors.As(err, &setupErr) {
			fmt.Fprint(os.Stderr, ui.FormatError("Infrastructure setup failed", err.Error(), setupErr.Hint))
			return err
		}
		fmt.Fprint(os.Stderr, ui.FormatError("Scaffolding failed", err.Error(), ""))
		return err
	}

	ui.Success(fmt.Sprintf("Created %s", result.Dir))
	fmt.Println()
	fmt.Printf("Next step: %s\n", ui.Bold("cd "+result.Dir))
	fmt.Printf("           %s\n", ui.Hint("service containers live in the app's docker-compose.yml"))
	return nil
}

// changedFlags collects only the flags the user actually set, so unset
// flags stay promptable.
func changedFlags(cmd *cobra.Command) map[string]string {
	flags := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		flags[f.Name] = f.Value.String()
	})
	return flags
}

// applyConfigDefaults lets phphive.yml pre-answer questions the user did
// not pre-answer on the command line.
func applyConfigDefaults(flags map[string]string, cfg *config.Config) {
	defaults := map[string]string{
		"type":         cfg.Defaults.Type,
		"php-version":  cfg.Defaults.PHPVersion,
		"database":     cfg.Defaults.Database,
		"fallback":     cfg.Defaults.Fallback,
		"template-dir": cfg.TemplateDir,
	}
	for name, value := range defaults {
		if value != "" && flags[name] == "" {
			flags[name] = value
		}
	}
	if appType != "" {
		flags["type"] = appType
	}
	if fallback != "" {
		flags["fallback"] = fallback
	}
}

func selectAppType(name string, interactive bool) (apptype.AppType, error) {
	if name == "" && interactive {
		options := make([]prompt.Option, 0)
		for _, at := range apptype.All() {
			meta := at.Metadata()
			options = append(options, prompt.Option{Label: meta.DisplayName + " - " + meta.Description, Value: meta.Name})
		}
		selected, err := prompt.HuhPrompter{}.Select("What are you building?", "", options, "laravel")
		if err != nil {
			return nil, err
		}
		name = selected
	}
	if name == "" {
		name = "laravel"
	}

	at, ok := apptype.Find(name)
	if !ok {
		return nil, fmt.Errorf("unknown app type %q, run 'phphive new --help' for the list", name)
	}
	return at, nil
}
