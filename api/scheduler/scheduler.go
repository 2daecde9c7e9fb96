// Package scheduler runs the background email delivery of stored notifications.
package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/logging"
	"github.com/diantamela/satgas-ppk/metrics"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/notification"
	"github.com/diantamela/satgas-ppk/repository"
	templates "github.com/diantamela/satgas-ppk/templates/html"
)

// DefaultBatchSize bounds how many notifications one pass delivers
const DefaultBatchSize = 100

// Scheduler polls undelivered notifications and emails them
type Scheduler struct {
	cron          *cron.Cron
	spec          string
	Notifications repository.NotificationRepository
	Directory     notification.Directory
	Mailer        notification.Mailer
	BaseURL       string
	BatchSize     int
	now           func() time.Time
	log           *zap.SugaredLogger
}

// Report tallies one delivery pass
type Report struct {
	Sent    int
	Failed  int
	Skipped int
}

// NewScheduler creates a delivery scheduler running on the cron spec
func NewScheduler(spec string, repo repository.NotificationRepository, dir notification.Directory, mailer notification.Mailer, baseURL string) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:          spec,
		Notifications: repo,
		Directory:     dir,
		Mailer:        mailer,
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		BatchSize:     DefaultBatchSize,
		now:           time.Now,
		log:           logging.New("delivery"),
	}
}

// Start registers the delivery job and starts the cron
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infow("notification delivery scheduler started", "schedule", s.spec)
	return nil
}

// Stop waits for a running pass to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("notification delivery scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	report, err := s.DeliverPending(ctx)
	if err != nil {
		s.log.Errorw("notification delivery pass failed", "error", err)
		return
	}
	if report.Sent+report.Failed+report.Skipped > 0 {
		s.log.Infow("notification delivery pass finished",
			"sent", report.Sent,
			"failed", report.Failed,
			"skipped", report.Skipped)
	}
}

// DeliverPending emails one batch of undelivered notifications. Recipients without an
// email on file are marked delivered and counted as skipped. Send failures stay
// undelivered so the next pass retries them.
func (s *Scheduler) DeliverPending(ctx context.Context) (Report, error) {
	var report Report
	pending, err := s.Notifications.ListUndelivered(ctx, s.BatchSize)
	if err != nil {
		return report, err
	}
	for i := range pending {
		n := &pending[i]
		outcome := s.deliver(ctx, n)
		metrics.Deliveries.WithLabelValues(outcome).Inc()
		switch outcome {
		case "sent":
			report.Sent++
		case "skipped":
			report.Skipped++
		default:
			report.Failed++
		}
	}
	return report, nil
}

func (s *Scheduler) deliver(ctx context.Context, n *models.Notification) string {
	outcome := "sent"
	to, ok := s.Directory.Lookup(n.RecipientID)
	if !ok {
		outcome = "skipped"
	} else {
		html := templates.RenderNotificationEmail(n.Title, n.Message, s.link(n))
		if err := s.Mailer.Send(ctx, to, n.Title, n.Message, html); err != nil {
			s.log.Warnw("failed to email notification",
				"notificationId", n.ID,
				"recipient", n.RecipientID,
				"error", err)
			return "failed"
		}
	}
	if err := s.Notifications.MarkDelivered(ctx, n.ID, models.Timestamp(s.now())); err != nil {
		s.log.Errorw("failed to mark notification delivered", "notificationId", n.ID, "error", err)
		return "failed"
	}
	return outcome
}

func (s *Scheduler) link(n *models.Notification) string {
	if s.BaseURL == "" {
		return ""
	}
	if n.RelatedEntityType == "case" && n.RelatedEntityID != "" {
		return s.BaseURL + "/cases/" + n.RelatedEntityID
	}
	return s.BaseURL + "/notifications"
}
