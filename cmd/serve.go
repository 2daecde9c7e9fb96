package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/api/handlers"
	"github.com/diantamela/satgas-ppk/api/scheduler"
	"github.com/diantamela/satgas-ppk/config"
	"github.com/diantamela/satgas-ppk/notification"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run email delivery",
	RunE:  runServe,
}

func newScheduler(conf *config.Config, b *backend) *scheduler.Scheduler {
	mailer := notification.SendGridMailer{
		APIKey:    conf.SendGridAPIKey,
		FromName:  conf.MailFromName,
		FromEmail: conf.MailFromAddress,
	}
	return scheduler.NewScheduler(conf.DeliverySchedule, b.Notifications(), conf.Recipients, mailer, conf.BaseURL)
}

func runServe(cmd *cobra.Command, _ []string) error {
	b, err := openStore(conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(context.Background()); err != nil {
			zap.S().Warnw("failed to close store", "error", err)
		}
	}()

	app := handlers.NewApp(*conf, b, b.ping)

	if conf.SendGridAPIKey != "" {
		s := newScheduler(conf, b)
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()
	} else {
		zap.S().Warn("SENDGRID_API_KEY is not set, email delivery is disabled")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", conf.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("satgas-ppk is up and running",
			"port", conf.Port,
			"url", conf.BaseURL,
			"driver", conf.Driver,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
