// Package notification records in-app notifications and fans them out to live subscribers.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/metrics"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

// Publisher pushes a stored notification to whoever is listening for the recipient
type Publisher interface {
	Publish(recipientID string, n *models.Notification)
}

// Dispatcher is the notification write path. Notify never fails its caller.
type Dispatcher struct {
	repo      repository.NotificationRepository
	publisher Publisher
	now       func() time.Time
}

// NewDispatcher creates a dispatcher over repo. publisher may be nil.
func NewDispatcher(repo repository.NotificationRepository, publisher Publisher) *Dispatcher {
	return &Dispatcher{repo: repo, publisher: publisher, now: time.Now}
}

// Notify records a notification for recipientID. Failures are logged and nil is returned.
func (d *Dispatcher) Notify(ctx context.Context, recipientID string, category models.NotificationCategory, title, message string, related *models.RelatedEntity) *models.Notification {
	if !category.Valid() {
		zap.S().Warnw("unknown notification category", "category", category, "recipient", recipientID)
	}
	n := &models.Notification{
		ID:          uuid.NewString(),
		RecipientID: recipientID,
		Category:    category,
		Title:       title,
		Message:     message,
		CreatedAt:   models.Timestamp(d.now()),
	}
	if related != nil {
		n.RelatedEntityID = related.ID
		n.RelatedEntityType = related.Type
	}
	if err := d.repo.Insert(ctx, n); err != nil {
		metrics.NotificationFailures.Inc()
		zap.S().Errorw("failed to record notification",
			"recipient", recipientID,
			"category", category,
			"error", err)
		return nil
	}
	if d.publisher != nil {
		d.publisher.Publish(recipientID, n)
	}
	return n
}

// MarkRead flags a notification read. Repeated calls keep the first read time.
func (d *Dispatcher) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	n, err := d.repo.MarkRead(ctx, notificationID, models.Timestamp(d.now()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark notification read")
	}
	return n, nil
}

// Get returns one notification
func (d *Dispatcher) Get(ctx context.Context, notificationID string) (*models.Notification, error) {
	n, err := d.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notification")
	}
	return n, nil
}

// ListForRecipient returns a recipient's notifications, newest first
func (d *Dispatcher) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	ns, err := d.repo.ListByRecipient(ctx, recipientID, unreadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	return ns, nil
}
