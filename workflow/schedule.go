package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diantamela/satgas-ppk/models"
)

// DefaultSessionLength is applied when a schedule omits one end of its window
const DefaultSessionLength = 2 * time.Hour

// ScheduleInput carries schedule fields. Nil fields are treated as omitted.
type ScheduleInput struct {
	Start                *time.Time                   `json:"start"`
	End                  *time.Time                   `json:"end"`
	Location             *string                      `json:"location"`
	Methods              []models.InvestigationMethod `json:"methods"`
	PartyTypes           []models.PartyType           `json:"partyTypes"`
	OtherPartiesDetail   *string                      `json:"otherPartiesDetail"`
	Team                 []models.TeamMember          `json:"team"`
	ConsentObtained      *bool                        `json:"consentObtained"`
	ConsentDocumentation *string                      `json:"consentDocumentation"`
	RiskNotes            *string                      `json:"riskNotes"`
	PlanSummary          *string                      `json:"planSummary"`
	FollowUpAction       *string                      `json:"followUpAction"`
	FollowUpDate         *time.Time                   `json:"followUpDate"`
	FollowUpNotes        *string                      `json:"followUpNotes"`
	AccessLevel          *models.AccessLevel          `json:"accessLevel"`
	Notes                *string                      `json:"notes"`
}

func (in ScheduleInput) validate() error {
	if err := validateTags(in.Methods, in.PartyTypes); err != nil {
		return err
	}
	if err := validateTeam(in.Team); err != nil {
		return err
	}
	if in.AccessLevel != nil && !in.AccessLevel.Valid() {
		return ValidationError("accessLevel", "unknown access level")
	}
	return nil
}

// window resolves the session window, filling an omitted end from the default length
func window(start, end *time.Time, now time.Time) (time.Time, time.Time) {
	switch {
	case start == nil && end == nil:
		return now, now.Add(DefaultSessionLength)
	case start == nil:
		e := models.Timestamp(*end)
		return e.Add(-DefaultSessionLength), e
	case end == nil:
		st := models.Timestamp(*start)
		return st, st.Add(DefaultSessionLength)
	}
	return models.Timestamp(*start), models.Timestamp(*end)
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func newSchedule(caseID string, actor models.Actor, in ScheduleInput, now time.Time) *models.Schedule {
	start, end := window(in.Start, in.End, now)
	sched := &models.Schedule{
		ID:                   uuid.NewString(),
		CaseID:               caseID,
		Start:                start,
		End:                  end,
		Location:             strings.TrimSpace(str(in.Location)),
		Methods:              in.Methods,
		PartyTypes:           in.PartyTypes,
		OtherPartiesDetail:   str(in.OtherPartiesDetail),
		Team:                 in.Team,
		ConsentDocumentation: str(in.ConsentDocumentation),
		RiskNotes:            str(in.RiskNotes),
		PlanSummary:          str(in.PlanSummary),
		FollowUpAction:       str(in.FollowUpAction),
		FollowUpDate:         models.TimestampPtr(in.FollowUpDate),
		FollowUpNotes:        str(in.FollowUpNotes),
		Notes:                str(in.Notes),
		CreatedBy:            actor.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if in.ConsentObtained != nil {
		sched.ConsentObtained = *in.ConsentObtained
	}
	if in.AccessLevel != nil {
		sched.AccessLevel = *in.AccessLevel
	}
	normalizeSchedule(sched)
	return sched
}

// mergeSchedule overwrites the supplied fields of cur. Moving only the start keeps the
// session length.
func mergeSchedule(cur models.Schedule, in ScheduleInput) models.Schedule {
	next := cur
	switch {
	case in.Start != nil && in.End != nil:
		next.Start, next.End = models.Timestamp(*in.Start), models.Timestamp(*in.End)
	case in.Start != nil:
		length := cur.End.Sub(cur.Start)
		next.Start = models.Timestamp(*in.Start)
		next.End = next.Start.Add(length)
	case in.End != nil:
		next.End = models.Timestamp(*in.End)
	}
	if in.Location != nil {
		next.Location = strings.TrimSpace(*in.Location)
	}
	if in.Methods != nil {
		next.Methods = in.Methods
	}
	if in.PartyTypes != nil {
		next.PartyTypes = in.PartyTypes
	}
	if in.OtherPartiesDetail != nil {
		next.OtherPartiesDetail = *in.OtherPartiesDetail
	}
	if in.Team != nil {
		next.Team = in.Team
	}
	if in.ConsentObtained != nil {
		next.ConsentObtained = *in.ConsentObtained
	}
	if in.ConsentDocumentation != nil {
		next.ConsentDocumentation = *in.ConsentDocumentation
	}
	if in.RiskNotes != nil {
		next.RiskNotes = *in.RiskNotes
	}
	if in.PlanSummary != nil {
		next.PlanSummary = *in.PlanSummary
	}
	if in.FollowUpAction != nil {
		next.FollowUpAction = *in.FollowUpAction
	}
	if in.FollowUpDate != nil {
		next.FollowUpDate = models.TimestampPtr(in.FollowUpDate)
	}
	if in.FollowUpNotes != nil {
		next.FollowUpNotes = *in.FollowUpNotes
	}
	if in.AccessLevel != nil {
		next.AccessLevel = *in.AccessLevel
	}
	if in.Notes != nil {
		next.Notes = *in.Notes
	}
	normalizeSchedule(&next)
	return next
}

func normalizeSchedule(s *models.Schedule) {
	if s.Methods == nil {
		s.Methods = []models.InvestigationMethod{}
	}
	if s.PartyTypes == nil {
		s.PartyTypes = []models.PartyType{}
	}
	if s.Team == nil {
		s.Team = []models.TeamMember{}
	}
}

// sameSchedule compares two schedules ignoring the update timestamp
func sameSchedule(a, b models.Schedule) bool {
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

func (s *Service) checkSchedule(sched *models.Schedule) error {
	if err := s.check(windowCheck{Location: sched.Location, Start: sched.Start, End: sched.End}); err != nil {
		return err
	}
	if sched.HasParty(models.PartyOther) && strings.TrimSpace(sched.OtherPartiesDetail) == "" {
		s.log.Warnw("schedule tags OTHER_PARTY without detail", "caseId", sched.CaseID, "scheduleId", sched.ID)
	}
	return nil
}

func memberIDs(team []models.TeamMember) []string {
	ids := make([]string, 0, len(team))
	for _, m := range team {
		ids = append(ids, m.MemberID)
	}
	return ids
}

// CreateSchedule plans an investigation session and moves the case to SCHEDULED
func (s *Service) CreateSchedule(ctx context.Context, actor models.Actor, caseID string, in ScheduleInput) (*models.Schedule, error) {
	const op = "create schedule"
	if err := requireHandler(actor, op); err != nil {
		return nil, classify(op, err)
	}
	if err := in.validate(); err != nil {
		return nil, classify(op, err)
	}
	var sched *models.Schedule
	err := s.atomically(ctx, op, func(ctx context.Context, out *outbox) error {
		c, err := s.loadCase(ctx, caseID)
		if err != nil {
			return err
		}
		sched, err = s.createSchedule(ctx, actor, c, in, out)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *Service) createSchedule(ctx context.Context, actor models.Actor, c *models.Case, in ScheduleInput, out *outbox) (*models.Schedule, error) {
	if err := guard(c, EventScheduleCreated); err != nil {
		return nil, err
	}
	now := s.clock()
	sched := newSchedule(c.ID, actor, in, now)
	if err := s.checkSchedule(sched); err != nil {
		return nil, err
	}
	// a re-opened investigation replaces its previous session plan
	if err := s.supersedeActive(ctx, c.ID, now); err != nil {
		return nil, err
	}
	if err := s.store.Schedules().Insert(ctx, sched); err != nil {
		return nil, err
	}
	start, end := sched.Start, sched.End
	activity := &models.Activity{
		ID:           uuid.NewString(),
		CaseID:       c.ID,
		ScheduleID:   &sched.ID,
		Type:         models.ActivityScheduledInvestigation,
		Title:        "Investigation session scheduled",
		Description:  sched.PlanSummary,
		Location:     sched.Location,
		Start:        &start,
		End:          &end,
		Participants: memberIDs(sched.Team),
		Confidential: true,
		AccessLevel:  sched.AccessLevel,
		ConductedBy:  actor.ID,
		Attachments:  []models.FileRef{},
		CreatedAt:    now,
	}
	if err := s.store.Activities().Insert(ctx, activity); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, c, actor, change{event: EventScheduleCreated, to: models.StatusScheduled, schedule: sched}); err != nil {
		return nil, err
	}
	out.add(c.ReporterID, models.NotifyScheduleCreated, "Investigation scheduled",
		fmt.Sprintf("An investigation session for report %s is scheduled on %s at %s.",
			c.CaseNumber, sched.Start.Format(time.RFC3339), sched.Location), caseRef(c))
	return sched, nil
}

// UpdateSchedule edits the active schedule in place, or creates one when none exists
func (s *Service) UpdateSchedule(ctx context.Context, actor models.Actor, caseID string, in ScheduleInput) (*models.Schedule, error) {
	const op = "update schedule"
	if err := requireHandler(actor, op); err != nil {
		return nil, classify(op, err)
	}
	if err := in.validate(); err != nil {
		return nil, classify(op, err)
	}
	var sched *models.Schedule
	err := s.atomically(ctx, op, func(ctx context.Context, out *outbox) error {
		c, err := s.loadCase(ctx, caseID)
		if err != nil {
			return err
		}
		if c.Status.Terminal() {
			return guard(c, EventScheduleUpdated)
		}
		active, err := s.activeSchedule(ctx, c.ID)
		if err != nil {
			return err
		}
		if active == nil {
			sched, err = s.createSchedule(ctx, actor, c, in, out)
			return err
		}
		if err := guard(c, EventScheduleUpdated); err != nil {
			return err
		}

		next := mergeSchedule(*active, in)
		if sameSchedule(*active, next) {
			sched = active
			return nil
		}
		if err := s.checkSchedule(&next); err != nil {
			return err
		}
		next.UpdatedAt = s.clock()
		if err := s.store.Schedules().Update(ctx, &next); err != nil {
			return err
		}
		if err := s.commit(ctx, c, actor, change{event: EventScheduleUpdated, schedule: &next}); err != nil {
			return err
		}
		sched = &next
		out.add(c.ReporterID, models.NotifyScheduleUpdated, "Investigation schedule changed",
			fmt.Sprintf("The investigation session for report %s is now on %s at %s.",
				c.CaseNumber, next.Start.Format(time.RFC3339), next.Location), caseRef(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}

// DeleteSchedule cancels the active schedule. The case falls back to IN_PROGRESS when
// investigation work already happened, otherwise to the status it was scheduled from
// (VERIFIED or PENDING). A schedule that already has a result is marked superseded
// instead of removed.
func (s *Service) DeleteSchedule(ctx context.Context, actor models.Actor, caseID string) error {
	const op = "delete schedule"
	if err := requireHandler(actor, op); err != nil {
		return classify(op, err)
	}
	return s.atomically(ctx, op, func(ctx context.Context, out *outbox) error {
		c, err := s.loadCase(ctx, caseID)
		if err != nil {
			return err
		}
		active, err := s.activeSchedule(ctx, c.ID)
		if err != nil {
			return err
		}
		if active == nil {
			return nil
		}
		if err := guard(c, EventScheduleDeleted); err != nil {
			return err
		}
		prior, err := s.hadPriorActivity(ctx, c)
		if err != nil {
			return err
		}
		now := s.clock()
		// a schedule with a result stays on record, only its active flag goes
		_, err = s.store.Results().GetBySchedule(ctx, active.ID)
		switch {
		case err == nil:
			err = s.store.Schedules().Supersede(ctx, active.ID, now)
		case KindOf(err) == KindNotFound:
			err = s.store.Schedules().Delete(ctx, active.ID)
		}
		if err != nil {
			return err
		}
		cancelled := &models.Activity{
			ID:           uuid.NewString(),
			CaseID:       c.ID,
			ScheduleID:   &active.ID,
			Type:         models.ActivityScheduleCancelled,
			Title:        "Investigation session cancelled",
			Location:     active.Location,
			Participants: memberIDs(active.Team),
			Confidential: true,
			AccessLevel:  active.AccessLevel,
			ConductedBy:  actor.ID,
			Attachments:  []models.FileRef{},
			CreatedAt:    now,
		}
		if err := s.store.Activities().Insert(ctx, cancelled); err != nil {
			return err
		}
		to := models.StatusPending
		switch {
		case prior:
			to = models.StatusInProgress
		case c.StatusBefore(models.StatusScheduled) == models.StatusVerified:
			to = models.StatusVerified
		}
		if err := s.commit(ctx, c, actor, change{event: EventScheduleDeleted, to: to, clearSummary: true}); err != nil {
			return err
		}
		out.add(c.ReporterID, models.NotifyScheduleCancelled, "Investigation session cancelled",
			fmt.Sprintf("The investigation session for report %s has been cancelled.", c.CaseNumber), caseRef(c))
		return nil
	})
}

// hadPriorActivity reports whether investigation work beyond scheduling bookkeeping exists
func (s *Service) hadPriorActivity(ctx context.Context, c *models.Case) (bool, error) {
	if c.EnteredStatus(models.StatusInProgress) {
		return true, nil
	}
	activities, err := s.store.Activities().ListByCase(ctx, c.ID)
	if err != nil {
		return false, err
	}
	for _, a := range activities {
		if !a.Type.Bookkeeping() {
			return true, nil
		}
	}
	return false, nil
}

// GetActiveSchedule returns the case's active schedule, or nil when there is none
func (s *Service) GetActiveSchedule(ctx context.Context, caseID string) (*models.Schedule, error) {
	var sched *models.Schedule
	err := s.read(ctx, "get active schedule", func(ctx context.Context) error {
		if _, err := s.loadCase(ctx, caseID); err != nil {
			return err
		}
		var err error
		sched, err = s.activeSchedule(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}
