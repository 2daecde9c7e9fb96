// Package cmd holds the satgas-ppk command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diantamela/satgas-ppk/config"
	"github.com/diantamela/satgas-ppk/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var conf *config.Config

var rootCmd = &cobra.Command{
	Use:   "satgas-ppk",
	Short: "Case workflow API for the Satgas PPK investigation team",
	Long: `satgas-ppk serves the report intake, scheduling and investigation result API
of the Satgas PPK, and delivers queued notifications by email.

Configuration is read from the environment, then from the YAML file named by
CONFIG_FILE when set.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		conf, err = config.Load()
		return err
	},
	RunE: runServe,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(deliverCmd)
	rootCmd.Version = version
}

// Execute runs the command named on the command line, serve when none is
func Execute() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
