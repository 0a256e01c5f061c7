package main

import (
	"fmt"
	"os"

	"github.com/fentz26/timeline/internal/config"
	"github.com/fentz26/timeline/internal/controlplane"
	"github.com/fentz26/timeline/internal/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "timeline",
	Short: "timeline - lane layout for dated items",
	Long:  `timeline lays dated items out on a shared axis, packs them into lanes, and lets you move, resize and rename them from the terminal or over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadConfig(configPath)
		} else {
			cfg, err = config.LoadConfigFromHome()
		}
		if err != nil {
			return err
		}

		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		log.SetLevel(level)

		if !cmd.Flags().Changed("api") {
			apiAddr = cfg.API
		}
		return nil
	},
	SilenceUsage: true,
	// No RunE - defaults to showing help when no subcommand is provided
}

var (
	apiAddr    string
	configPath string
	cfg        *config.Config
)

func init() {
	controlplane.Version = version

	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", config.DefaultAPI, "API server address")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.timeline/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
