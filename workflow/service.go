// Package workflow implements the investigation case workflow: intake, the case status
// machine, scheduling, the activity log and result records.
package workflow

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

// Notifier records a notification. Implementations must not fail the caller.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, category models.NotificationCategory, title, message string, related *models.RelatedEntity) *models.Notification
}

// Service runs every workflow operation against one store
type Service struct {
	store    repository.Store
	notifier Notifier
	now      func() time.Time
	validate *validator.Validate
	log      *zap.SugaredLogger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger overrides the logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) { s.log = l }
}

// NewService builds a workflow service. notifier may be nil.
func NewService(store repository.Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		validate: newValidator(),
		log:      zap.S().Named("workflow"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return models.Timestamp(s.now())
}

type notice struct {
	recipient string
	category  models.NotificationCategory
	title     string
	message   string
	related   *models.RelatedEntity
}

// outbox collects notifications raised inside a transaction; they go out after commit
type outbox struct {
	notices []notice
}

func (o *outbox) add(recipient string, category models.NotificationCategory, title, message string, related *models.RelatedEntity) {
	if recipient == "" {
		return
	}
	o.notices = append(o.notices, notice{recipient, category, title, message, related})
}

// atomically runs fn in one transaction and dispatches its notifications once it committed
func (s *Service) atomically(ctx context.Context, op string, fn func(ctx context.Context, out *outbox) error) error {
	var out outbox
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		// the backend may replay fn on transient errors
		out = outbox{}
		return fn(ctx, &out)
	})
	if err != nil {
		return classify(op, err)
	}
	if s.notifier == nil {
		return nil
	}
	nctx := context.WithoutCancel(ctx)
	for _, n := range out.notices {
		s.notifier.Notify(nctx, n.recipient, n.category, n.title, n.message, n.related)
	}
	return nil
}

// read runs an idempotent read, retrying once on a storage failure
func (s *Service) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err != nil && KindOf(err) == KindStorage && ctx.Err() == nil {
		s.log.Warnw("retrying read after storage failure", "op", op, "error", err)
		err = fn(ctx)
	}
	return classify(op, err)
}

func requireHandler(actor models.Actor, action string) error {
	if !actor.HandlesCases() {
		return AuthorizationError(actor, action)
	}
	return nil
}

func (s *Service) loadCase(ctx context.Context, id string) (*models.Case, error) {
	c, err := s.store.Cases().Get(ctx, id)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, NotFoundError("case", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) activeSchedule(ctx context.Context, caseID string) (*models.Schedule, error) {
	sched, err := s.store.Schedules().Active(ctx, caseID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return sched, nil
}

func caseRef(c *models.Case) *models.RelatedEntity {
	return &models.RelatedEntity{ID: c.ID, Type: "case"}
}
