package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pixielity-inc/phphive-cli-sub001/internal/config"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/prompt"
	"github.com/pixielity-inc/phphive-cli-sub001/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a phphive.yml config file interactively",
	Long: `Set up the monorepo root: answer a few questions about your vendor
prefix and defaults, then get a phphive.yml and an apps/ directory.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "phphive.yml"

	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompt.HuhPrompter{}.Confirm(configPath+" already exists. Overwrite?", "", false)
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Aborted.")
			return nil
		}
	}

	p := prompt.HuhPrompter{}

	vendorName, err := p.Input("Composer vendor prefix", "used for package names like vendor/app", "phphive", "phphive")
	if err != nil {
		return fmt.Errorf("prompting: %w", err)
	}

	phpVersion, err := p.Input("Default PHP version", "", "8.3", "8.3")
	if err != nil {
		return fmt.Errorf("prompting: %w", err)
	}

	defaultType, err := p.Select("Default app type", "", []prompt.Option{
		{Label: "Laravel", Value: "laravel"},
		{Label: "Symfony", Value: "symfony"},
		{Label: "Magento", Value: "magento"},
		{Label: "Skeleton package", Value: "skeleton"},
	}, "laravel")
	if err != nil {
		return fmt.Errorf("prompting: %w", err)
	}

	cfg := config.Config{Vendor: vendorName}
	cfg.Defaults.Type = defaultType
	cfg.Defaults.PHPVersion = phpVersion

	content, err := config.Generate(cfg)
	if err != nil {
		return fmt.Errorf("generating config: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.MkdirAll("apps", 0755); err != nil {
		return err
	}
	gitkeep := filepath.Join("apps", ".gitkeep")
	if _, err := os.Stat(gitkeep); os.IsNotExist(err) {
		if err := os.WriteFile(gitkeep, nil, 0644); err != nil {
			return err
		}
	}

	ui.Success(fmt.Sprintf("Created %s", configPath))
	fmt.Println()
	fmt.Printf("Next step: %s\n", ui.Bold("phphive new my-app"))
	fmt.Printf("           %s\n", ui.Hint("or edit phphive.yml to fine-tune the defaults"))

	return nil
}
