package main

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "printsite",
	Short: "Marketing site for a printing business",
	Long: `printsite serves the business website: home, about, services, portfolio,
equipment and contact pages, with scroll-reveal sections and an autoplaying
portfolio carousel backed by per-page server sessions.

Configuration is read from a YAML file and PRINTSITE_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "printsite.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every request")
}
