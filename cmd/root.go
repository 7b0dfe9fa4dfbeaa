package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "phphive",
	Short: "Scaffold PHP applications with shared Docker infrastructure",
	Long: `phphive scaffolds Laravel, Symfony, Magento, and plain Composer packages
inside a monorepo. Databases, caches, queues, search engines, and object
storage are provisioned through a per-application docker-compose.yml, with
a local fallback when Docker is unavailable.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: phphive.yml)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("phphive")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("phphive")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		}
	}
}
