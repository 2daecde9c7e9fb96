package workflow

import (
	"context"
	"time"

	"github.com/diantamela/satgas-ppk/metrics"
	"github.com/diantamela/satgas-ppk/models"
)

// Event is an input to the case status machine
type Event string

// Events
const (
	EventCaseCreated          Event = "case_created"
	EventCaseVerified         Event = "case_verified"
	EventCaseRejected         Event = "case_rejected"
	EventScheduleCreated      Event = "schedule_created"
	EventScheduleUpdated      Event = "schedule_updated"
	EventScheduleDeleted      Event = "schedule_deleted"
	EventInvestigationStarted Event = "investigation_started"
	EventResultSaved          Event = "result_saved"
	EventResultFinalized      Event = "result_finalized"
	EventStatusOverride       Event = "status_override"
	EventProgressUpdated      Event = "progress_updated"
)

var nonTerminal = []models.CaseStatus{
	models.StatusPending,
	models.StatusVerified,
	models.StatusScheduled,
	models.StatusInProgress,
}

// sources lists the statuses each event may be applied in
var sources = map[Event][]models.CaseStatus{
	EventCaseVerified:         {models.StatusPending},
	EventCaseRejected:         nonTerminal,
	EventScheduleCreated:      {models.StatusPending, models.StatusVerified, models.StatusInProgress},
	EventScheduleUpdated:      {models.StatusScheduled, models.StatusInProgress},
	EventScheduleDeleted:      {models.StatusScheduled},
	EventInvestigationStarted: {models.StatusScheduled},
	EventResultSaved:          nonTerminal,
	EventResultFinalized:      {models.StatusInProgress, models.StatusScheduled},
	EventStatusOverride:       nonTerminal,
	EventProgressUpdated:      nonTerminal,
}

// Allowed reports whether event may be applied to a case in status from
func Allowed(event Event, from models.CaseStatus) bool {
	for _, s := range sources[event] {
		if s == from {
			return true
		}
	}
	return false
}

// MapProposedStatus maps a declared result outcome to the case status it leads to
func MapProposedStatus(p models.ProposedStatus) (models.CaseStatus, bool) {
	switch p {
	case models.ProposedUnderInvestigation,
		models.ProposedEvidenceCollection,
		models.ProposedStatementAnalysis,
		models.ProposedReadyForRecommendation:
		return models.StatusInProgress, true
	case models.ProposedForwardedToRektorat:
		return models.StatusCompleted, true
	case models.ProposedClosedTerminated:
		return models.StatusRejected, true
	}
	return "", false
}

// clearsSchedule reports whether entering s must leave the case without an active schedule
func clearsSchedule(s models.CaseStatus) bool {
	return s == models.StatusPending || s == models.StatusVerified || s == models.StatusRejected
}

func guard(c *models.Case, event Event) error {
	if !Allowed(event, c.Status) {
		metrics.Transitions.WithLabelValues(string(event), "rejected").Inc()
		return InvalidStateError(c.Status, event)
	}
	return nil
}

// change describes one write through the status gateway
type change struct {
	event Event
	// to is the destination; empty keeps the current status
	to models.CaseStatus
	// schedule, when set, is copied into the summary fields
	schedule *models.Schedule
	// clearSummary drops the summary fields without touching schedules
	clearSummary bool
	phase        models.ProposedStatus
	progress     *int
	notes        string
}

// commit is the only writer of Case.Status and the schedule summary. It must run inside
// the caller's transaction, after c was loaded in that same transaction.
func (s *Service) commit(ctx context.Context, c *models.Case, actor models.Actor, ch change) error {
	if err := guard(c, ch.event); err != nil {
		return err
	}
	from := c.Status
	to := ch.to
	if to == "" {
		to = from
	}
	now := s.clock()

	switch {
	case clearsSchedule(to):
		if err := s.supersedeActive(ctx, c.ID, now); err != nil {
			return err
		}
		c.ClearSchedule()
	case ch.schedule != nil:
		c.SyncSchedule(ch.schedule, actor.ID)
	case ch.clearSummary:
		c.ClearSchedule()
	}
	if to == models.StatusScheduled && c.ScheduledDate == nil {
		metrics.Transitions.WithLabelValues(string(ch.event), "rejected").Inc()
		return InvalidStateError(from, ch.event)
	}

	c.Status = to
	if ch.phase != "" {
		c.Phase = ch.phase
	}
	if ch.progress != nil {
		c.InvestigationProgress = *ch.progress
	}
	c.History = append(c.History, models.CaseHistoryEntry{
		Event:     string(ch.event),
		From:      from,
		To:        to,
		ActorID:   actor.ID,
		Notes:     ch.notes,
		Timestamp: now,
	})
	c.UpdatedAt = now

	if err := s.store.Cases().Update(ctx, c, c.Version); err != nil {
		return err
	}
	metrics.Transitions.WithLabelValues(string(ch.event), "applied").Inc()
	if from != to {
		s.log.Infow("case status changed", "caseId", c.ID, "event", ch.event, "from", from, "to", to, "actor", actor.ID)
	}
	return nil
}

func (s *Service) supersedeActive(ctx context.Context, caseID string, at time.Time) error {
	active, err := s.activeSchedule(ctx, caseID)
	if err != nil || active == nil {
		return err
	}
	return s.store.Schedules().Supersede(ctx, active.ID, at)
}
