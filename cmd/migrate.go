package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := openStore(conf)
		if err != nil {
			return err
		}
		defer b.Close(context.Background())

		if err := b.migrate(cmd.Context()); err != nil {
			return err
		}
		zap.S().Infow("schema is up to date", "driver", conf.Driver)
		return nil
	},
}
