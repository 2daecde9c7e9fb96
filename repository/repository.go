// Package repository declares the storage contracts the workflow runs against.
// Backends live in databases (MongoDB) and sqlstore (SQLite).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/diantamela/satgas-ppk/models"
)

// Sentinel errors every backend maps its driver errors to
var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("record was modified concurrently")
	ErrDuplicate = errors.New("duplicate key")
)

// Transactor runs fn inside one storage transaction. The transaction travels in the
// context handed to fn; repositories called with that context join it. Nested calls
// reuse the outer transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CaseQuery is a filtered page request against cases
type CaseQuery struct {
	models.CaseFilter
	Offset int
	Limit  int
}

// CaseRepository stores cases
type CaseRepository interface {
	Insert(ctx context.Context, c *models.Case) error
	Get(ctx context.Context, id string) (*models.Case, error)
	// Update replaces c when the stored version equals expectedVersion, and bumps
	// c.Version. ErrConflict is returned when the version moved.
	Update(ctx context.Context, c *models.Case, expectedVersion int64) error
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	List(ctx context.Context, q CaseQuery) ([]models.Case, error)
	Count(ctx context.Context, f models.CaseFilter) (int64, error)
}

// ScheduleRepository stores schedules and their rosters
type ScheduleRepository interface {
	Insert(ctx context.Context, s *models.Schedule) error
	Get(ctx context.Context, id string) (*models.Schedule, error)
	// Active returns the case's active schedule or ErrNotFound
	Active(ctx context.Context, caseID string) (*models.Schedule, error)
	Update(ctx context.Context, s *models.Schedule) error
	Supersede(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// ActivityRepository stores the append-only activity log
type ActivityRepository interface {
	Insert(ctx context.Context, a *models.Activity) error
	// ListByCase returns newest first
	ListByCase(ctx context.Context, caseID string) ([]models.Activity, error)
}

// ResultRepository stores berita acara records
type ResultRepository interface {
	Insert(ctx context.Context, r *models.Result) error
	Update(ctx context.Context, r *models.Result) error
	Get(ctx context.Context, id string) (*models.Result, error)
	GetBySchedule(ctx context.Context, scheduleID string) (*models.Result, error)
	// ListByCase returns oldest first
	ListByCase(ctx context.Context, caseID string) ([]models.Result, error)
}

// NotificationRepository stores notifications
type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	// MarkRead sets the read flag once; later calls leave ReadAt untouched
	MarkRead(ctx context.Context, id string, at time.Time) (*models.Notification, error)
	// ListByRecipient returns newest first
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error)
	ListUndelivered(ctx context.Context, limit int) ([]models.Notification, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
}

// SummaryRepository serves the enriched case listing
type SummaryRepository interface {
	ListSummaries(ctx context.Context, q CaseQuery) ([]models.CaseSummary, error)
}

// Store bundles every repository of one backend
type Store interface {
	Transactor
	Cases() CaseRepository
	Schedules() ScheduleRepository
	Activities() ActivityRepository
	Results() ResultRepository
	Notifications() NotificationRepository
	Summaries() SummaryRepository
	Close(ctx context.Context) error
}
