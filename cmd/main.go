package main

import (
	"context"
	"fmt"
	"os"

	"github.com/glefebvre/catalog-console/internal/config"
	"github.com/glefebvre/catalog-console/internal/logger"
	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "catalog-console",
	Short: "Catalog Console is the admin console of the media catalog API",
	Long: `Catalog Console is a server-rendered admin console for the media catalog API.
Operators sign in with their catalog credentials to manage users, curate the
trending lists and edit movies and shows down to their quality variants.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Catalog Console",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Catalog Console " + version)
	},
}

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is ./config.yml)")
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(versionCmd, serveCmd, checkCmd, pruneStatesCmd)
}

func initConfig() {
	// Skip config loading for version command
	if len(os.Args) > 1 && os.Args[1] == "version" {
		return
	}

	if err := config.Load(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()
	logger.Configure(cfg.GetAppLogLevel(), cfg.GetDatabaseLogLevel(), cfg.Logging.Format)
	if cfg.IsUsingLegacyLogging() {
		logger.AppLogger().Warn("logging.level is deprecated, use logging.app.level and logging.database.level")
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
