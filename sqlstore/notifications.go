package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/diantamela/satgas-ppk/models"
)

const notificationColumns = `id, recipient_id, category, title, message, related_entity_id,
	related_entity_type, is_read, read_at, created_at, delivered_at`

type notificationRow struct {
	ID                string         `db:"id"`
	RecipientID       string         `db:"recipient_id"`
	Category          string         `db:"category"`
	Title             string         `db:"title"`
	Message           string         `db:"message"`
	RelatedEntityID   string         `db:"related_entity_id"`
	RelatedEntityType string         `db:"related_entity_type"`
	IsRead            bool           `db:"is_read"`
	ReadAt            sql.NullString `db:"read_at"`
	CreatedAt         string         `db:"created_at"`
	DeliveredAt       sql.NullString `db:"delivered_at"`
}

func (r notificationRow) model() (*models.Notification, error) {
	var p timeParser
	n := &models.Notification{
		ID:                r.ID,
		RecipientID:       r.RecipientID,
		Category:          models.NotificationCategory(r.Category),
		Title:             r.Title,
		Message:           r.Message,
		RelatedEntityID:   r.RelatedEntityID,
		RelatedEntityType: r.RelatedEntityType,
		Read:              r.IsRead,
		ReadAt:            p.ptr(r.ReadAt),
		CreatedAt:         p.at(r.CreatedAt),
		DeliveredAt:       p.ptr(r.DeliveredAt),
	}
	return n, p.err
}

type notificationRepo struct{ s *Store }

func (r notificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	row := notificationRow{
		ID:                n.ID,
		RecipientID:       n.RecipientID,
		Category:          string(n.Category),
		Title:             n.Title,
		Message:           n.Message,
		RelatedEntityID:   n.RelatedEntityID,
		RelatedEntityType: n.RelatedEntityType,
		IsRead:            n.Read,
		ReadAt:            formatTimePtr(n.ReadAt),
		CreatedAt:         formatTime(n.CreatedAt),
		DeliveredAt:       formatTimePtr(n.DeliveredAt),
	}
	_, err := sqlx.NamedExecContext(ctx, r.s.ext(ctx), `INSERT INTO notifications (`+notificationColumns+`) VALUES (
		:id, :recipient_id, :category, :title, :message, :related_entity_id,
		:related_entity_type, :is_read, :read_at, :created_at, :delivered_at)`, row)
	return errors.Wrap(err, "failed to insert notification")
}

func (r notificationRepo) Get(ctx context.Context, id string) (*models.Notification, error) {
	var row notificationRow
	err := sqlx.GetContext(ctx, r.s.ext(ctx), &row, `SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("notification", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notification")
	}
	return row.model()
}

func (r notificationRepo) MarkRead(ctx context.Context, id string, at time.Time) (*models.Notification, error) {
	_, err := r.s.ext(ctx).ExecContext(ctx, `UPDATE notifications SET is_read = 1, read_at = ? WHERE id = ? AND is_read = 0`, formatTime(at), id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark notification read")
	}
	return r.Get(ctx, id)
}

func (r notificationRepo) list(ctx context.Context, query string, args ...interface{}) ([]models.Notification, error) {
	var rows []notificationRow
	if err := sqlx.SelectContext(ctx, r.s.ext(ctx), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	out := make([]models.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r notificationRepo) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	return r.list(ctx, query+` ORDER BY created_at DESC, rowid DESC`, recipientID)
}

func (r notificationRepo) ListUndelivered(ctx context.Context, limit int) ([]models.Notification, error) {
	return r.list(ctx, `SELECT `+notificationColumns+` FROM notifications
		WHERE delivered_at IS NULL ORDER BY created_at, rowid LIMIT ?`, limit)
}

func (r notificationRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	res, err := r.s.ext(ctx).ExecContext(ctx, `UPDATE notifications SET delivered_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return errors.Wrap(err, "failed to mark notification delivered")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("notification", id)
	}
	return nil
}
