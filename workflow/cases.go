package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

const (
	numberAttempts = 5
	// the yearly sequence is four digits
	maxYearlySequence = 9999
)

// ErrCaseNumbersExhausted is returned once a year has used every four digit sequence
var ErrCaseNumbersExhausted = errors.New("case numbers for the year are exhausted")

// CaseInput is the intake form of a report
type CaseInput struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	IncidentLocation string     `json:"incidentLocation"`
	IncidentDate     *time.Time `json:"incidentDate"`
}

// numberPrefix is LPN- followed by the two digit year
func numberPrefix(t time.Time) string {
	return fmt.Sprintf("LPN-%02d", t.Year()%100)
}

// CreateCase files a new report in PENDING and assigns it the next case number of the year
func (s *Service) CreateCase(ctx context.Context, actor models.Actor, in CaseInput) (*models.Case, error) {
	const op = "create case"
	if !actor.Authenticated() {
		return nil, classify(op, AuthorizationError(actor, "file a report"))
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, classify(op, ValidationError("title", "is required"))
	}

	now := s.clock()
	prefix := numberPrefix(now)
	c := &models.Case{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Category:         in.Category,
		ReporterID:       actor.ID,
		IncidentLocation: in.IncidentLocation,
		IncidentDate:     models.TimestampPtr(in.IncidentDate),
		Status:           models.StatusPending,
		Version:          1,
		History: []models.CaseHistoryEntry{{
			Event:     string(EventCaseCreated),
			To:        models.StatusPending,
			ActorID:   actor.ID,
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < numberAttempts; attempt++ {
		err := s.atomically(ctx, op, func(ctx context.Context, out *outbox) error {
			n, err := s.store.Cases().CountByNumberPrefix(ctx, prefix)
			if err != nil {
				return err
			}
			seq := n + 1 + int64(attempt)
			if seq > maxYearlySequence {
				return &Error{Kind: KindStorage, Message: fmt.Sprintf("no case numbers left for %s", prefix), Err: ErrCaseNumbersExhausted}
			}
			c.CaseNumber = fmt.Sprintf("%s%04d", prefix, seq)
			if err := s.store.Cases().Insert(ctx, c); err != nil {
				return err
			}
			out.add(c.ReporterID, models.NotifyCaseReceived, "Report received",
				fmt.Sprintf("Your report %s has been received and is awaiting verification.", c.CaseNumber), caseRef(c))
			return nil
		})
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		s.log.Warnw("case number taken, retrying", "caseNumber", c.CaseNumber, "attempt", attempt+1)
	}
	return nil, &Error{Kind: KindStorage, Op: op, Message: "could not allocate a case number", Err: repository.ErrDuplicate}
}

// GetCase returns one case
func (s *Service) GetCase(ctx context.Context, caseID string) (*models.Case, error) {
	var c *models.Case
	err := s.read(ctx, "get case", func(ctx context.Context) error {
		var err error
		c, err = s.loadCase(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// apply loads the case and runs one gateway change in a transaction
func (s *Service) apply(ctx context.Context, actor models.Actor, op, caseID string, ch change, prepare func(ctx context.Context, c *models.Case, ch *change) error, notify func(c *models.Case, out *outbox)) (*models.Case, error) {
	if err := requireHandler(actor, op); err != nil {
		return nil, classify(op, err)
	}
	var c *models.Case
	err := s.atomically(ctx, op, func(ctx context.Context, out *outbox) error {
		var err error
		c, err = s.loadCase(ctx, caseID)
		if err != nil {
			return err
		}
		next := ch
		if prepare != nil {
			if err := prepare(ctx, c, &next); err != nil {
				return err
			}
		}
		if err := s.commit(ctx, c, actor, next); err != nil {
			return err
		}
		if notify != nil {
			notify(c, out)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// VerifyCase accepts a pending report for handling
func (s *Service) VerifyCase(ctx context.Context, actor models.Actor, caseID, notes string) (*models.Case, error) {
	ch := change{event: EventCaseVerified, to: models.StatusVerified, notes: notes}
	return s.apply(ctx, actor, "verify case", caseID, ch, nil, func(c *models.Case, out *outbox) {
		out.add(c.ReporterID, models.NotifyCaseVerified, "Report verified",
			fmt.Sprintf("Your report %s has been verified by the task force.", c.CaseNumber), caseRef(c))
	})
}

// RejectCase closes a non-terminal report as rejected
func (s *Service) RejectCase(ctx context.Context, actor models.Actor, caseID, reason string) (*models.Case, error) {
	ch := change{event: EventCaseRejected, to: models.StatusRejected, notes: reason}
	return s.apply(ctx, actor, "reject case", caseID, ch, nil, func(c *models.Case, out *outbox) {
		msg := fmt.Sprintf("Your report %s has been closed.", c.CaseNumber)
		if reason != "" {
			msg += " Reason: " + reason
		}
		out.add(c.ReporterID, models.NotifyCaseRejected, "Report closed", msg, caseRef(c))
	})
}

// StartInvestigation marks a scheduled case as being investigated
func (s *Service) StartInvestigation(ctx context.Context, actor models.Actor, caseID string) (*models.Case, error) {
	ch := change{event: EventInvestigationStarted, to: models.StatusInProgress}
	return s.apply(ctx, actor, "start investigation", caseID, ch, nil, statusNotice)
}

// OverrideStatus moves a non-terminal case to target directly
func (s *Service) OverrideStatus(ctx context.Context, actor models.Actor, caseID string, target models.CaseStatus, notes string) (*models.Case, error) {
	const op = "override status"
	if !target.Valid() {
		return nil, classify(op, ValidationError("status", fmt.Sprintf("unknown status %q", target)))
	}
	ch := change{event: EventStatusOverride, to: target, notes: notes}
	return s.apply(ctx, actor, op, caseID, ch, func(ctx context.Context, c *models.Case, ch *change) error {
		if err := guard(c, EventStatusOverride); err != nil {
			return err
		}
		if target == models.StatusScheduled {
			active, err := s.activeSchedule(ctx, c.ID)
			if err != nil {
				return err
			}
			if active == nil {
				e := InvalidStateError(c.Status, EventStatusOverride)
				e.Message = "cannot override to SCHEDULED without an active schedule"
				return e
			}
			ch.schedule = active
		}
		s.log.Infow("manual status override", "caseId", c.ID, "from", c.Status, "to", target, "actor", actor.ID, "notes", notes)
		return nil
	}, statusNotice)
}

// SetInvestigationProgress records the advisory progress percentage
func (s *Service) SetInvestigationProgress(ctx context.Context, actor models.Actor, caseID string, percent int) (*models.Case, error) {
	const op = "set investigation progress"
	if percent < 0 || percent > 100 {
		return nil, classify(op, ValidationError("investigationProgress", "must be between 0 and 100"))
	}
	ch := change{event: EventProgressUpdated, progress: &percent}
	return s.apply(ctx, actor, op, caseID, ch, nil, nil)
}

func statusNotice(c *models.Case, out *outbox) {
	out.add(c.ReporterID, models.NotifyStatusChanged, "Report status updated",
		fmt.Sprintf("Your report %s is now %s.", c.CaseNumber, c.Status), caseRef(c))
}
