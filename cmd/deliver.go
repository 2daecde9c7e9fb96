package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var deliverCmd = &cobra.Command{
	Use:   "deliver",
	Short: "Email every undelivered notification once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if conf.SendGridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is not set")
		}
		b, err := openStore(conf)
		if err != nil {
			return err
		}
		defer b.Close(context.Background())

		report, err := newScheduler(conf, b).DeliverPending(cmd.Context())
		if err != nil {
			return err
		}
		zap.S().Infow("delivery pass finished",
			"sent", report.Sent,
			"failed", report.Failed,
			"skipped", report.Skipped,
		)
		return nil
	},
}
