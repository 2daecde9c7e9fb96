package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diantamela/satgas-ppk/models"
)

// ResultInput carries berita acara fields. Nil fields keep the stored value on re-edit.
type ResultInput struct {
	// CaseVersion is the case version the caller last read; a mismatch is a concurrent
	// modification. Finalizing requires it.
	CaseVersion *int64 `json:"caseVersion"`

	Title      *string                      `json:"title"`
	Location   *string                      `json:"location"`
	Start      *time.Time                   `json:"start"`
	End        *time.Time                   `json:"end"`
	Methods    []models.InvestigationMethod `json:"methods"`
	PartyTypes []models.PartyType           `json:"partyTypes"`

	SatgasPresent   []string                 `json:"satgasPresent"`
	PartyAttendance []models.PartyAttendance `json:"partyAttendance"`

	IdentityVerified        *bool                `json:"identityVerified"`
	PartiesStatementSummary *string              `json:"partiesStatementSummary"`
	NewEvidenceDescription  *string              `json:"newEvidenceDescription"`
	Evidence                []models.EvidenceRef `json:"evidence"`
	StatementConsistency    *string              `json:"statementConsistency"`
	InterimConclusion       *string              `json:"interimConclusion"`

	RecommendedActions    []models.RecommendedAction `json:"recommendedActions"`
	CaseStatusAfterResult *models.ProposedStatus     `json:"caseStatusAfterResult"`
	StatusChangeReason    *string                    `json:"statusChangeReason"`

	DataVerificationConfirmed *bool   `json:"dataVerificationConfirmed"`
	CreatorSignature          *string `json:"creatorSignature"`
	CreatorSignerName         *string `json:"creatorSignerName"`
	ChairSignature            *string `json:"chairSignature"`
	ChairSignerName           *string `json:"chairSignerName"`

	InternalNotes *string `json:"internalNotes"`
}

func (in ResultInput) validate() error {
	if err := validateTags(in.Methods, in.PartyTypes); err != nil {
		return err
	}
	for _, a := range in.PartyAttendance {
		if !a.PartyType.Valid() {
			return ValidationError("partyAttendance", "unknown party type "+string(a.PartyType))
		}
		if !a.Status.Valid() {
			return ValidationError("partyAttendance", "unknown attendance status "+string(a.Status))
		}
	}
	for _, e := range in.Evidence {
		if !e.Provenance.Valid() {
			return ValidationError("evidence", "unknown provenance "+string(e.Provenance))
		}
	}
	for _, a := range in.RecommendedActions {
		if !a.Action.Valid() {
			return ValidationError("recommendedActions", "unknown action "+string(a.Action))
		}
		if !a.Priority.Valid() {
			return ValidationError("recommendedActions", "unknown priority "+string(a.Priority))
		}
	}
	if in.CaseStatusAfterResult != nil && *in.CaseStatusAfterResult != "" && !in.CaseStatusAfterResult.Valid() {
		return ValidationError("caseStatusAfterResult", "unknown status "+string(*in.CaseStatusAfterResult))
	}
	return nil
}

// newResult seeds a result from the schedule it documents
func newResult(c *models.Case, sched *models.Schedule, actor models.Actor, now time.Time) *models.Result {
	return &models.Result{
		ID:                 uuid.NewString(),
		ScheduleID:         sched.ID,
		CaseID:             c.ID,
		Title:              c.Title,
		Location:           sched.Location,
		Start:              sched.Start,
		End:                sched.End,
		Methods:            append([]models.InvestigationMethod{}, sched.Methods...),
		PartyTypes:         append([]models.PartyType{}, sched.PartyTypes...),
		SatgasPresent:      []string{},
		PartyAttendance:    []models.PartyAttendance{},
		Evidence:           []models.EvidenceRef{},
		RecommendedActions: []models.RecommendedAction{},
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func setStr(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func mergeResult(r *models.Result, in ResultInput) {
	setStr(&r.Title, in.Title)
	setStr(&r.Location, in.Location)
	if in.Start != nil {
		r.Start = models.Timestamp(*in.Start)
	}
	if in.End != nil {
		r.End = models.Timestamp(*in.End)
	}
	if in.Methods != nil {
		r.Methods = in.Methods
	}
	if in.PartyTypes != nil {
		r.PartyTypes = in.PartyTypes
	}
	if in.SatgasPresent != nil {
		r.SatgasPresent = in.SatgasPresent
	}
	if in.PartyAttendance != nil {
		r.PartyAttendance = in.PartyAttendance
	}
	if in.IdentityVerified != nil {
		r.IdentityVerified = *in.IdentityVerified
	}
	setStr(&r.PartiesStatementSummary, in.PartiesStatementSummary)
	setStr(&r.NewEvidenceDescription, in.NewEvidenceDescription)
	if in.Evidence != nil {
		r.Evidence = in.Evidence
	}
	setStr(&r.StatementConsistency, in.StatementConsistency)
	setStr(&r.InterimConclusion, in.InterimConclusion)
	if in.RecommendedActions != nil {
		r.RecommendedActions = in.RecommendedActions
	}
	if in.CaseStatusAfterResult != nil {
		r.CaseStatusAfterResult = *in.CaseStatusAfterResult
	}
	setStr(&r.StatusChangeReason, in.StatusChangeReason)
	if in.DataVerificationConfirmed != nil {
		r.DataVerificationConfirmed = *in.DataVerificationConfirmed
	}
	setStr(&r.CreatorSignature, in.CreatorSignature)
	setStr(&r.CreatorSignerName, in.CreatorSignerName)
	setStr(&r.ChairSignature, in.ChairSignature)
	setStr(&r.ChairSignerName, in.ChairSignerName)
	setStr(&r.InternalNotes, in.InternalNotes)
}

// UpsertResult saves the result of a schedule. A draft is stored as given. Finalizing
// checks the result is complete and applies the declared outcome to the case.
func (s *Service) UpsertResult(ctx context.Context, actor models.Actor, scheduleID string, in ResultInput, finalize bool) (*models.Result, error) {
	op := "save result"
	event := EventResultSaved
	if finalize {
		op = "finalize result"
		event = EventResultFinalized
	}
	if err := requireHandler(actor, op); err != nil {
		return nil, classify(op, err)
	}
	if err := in.validate(); err != nil {
		return nil, classify(op, err)
	}
	if finalize && in.CaseVersion == nil {
		return nil, classify(op, ValidationError("caseVersion", "is required to finalize"))
	}

	var result *models.Result
	err := s.atomically(ctx, op, func(ctx context.Context, out *outbox) error {
		sched, err := s.store.Schedules().Get(ctx, scheduleID)
		if err != nil {
			if KindOf(err) == KindNotFound {
				return NotFoundError("schedule", scheduleID)
			}
			return err
		}
		c, err := s.loadCase(ctx, sched.CaseID)
		if err != nil {
			return err
		}
		if in.CaseVersion != nil && *in.CaseVersion != c.Version {
			return ConcurrentModificationError(c.ID)
		}
		if c.Status.Terminal() {
			return guard(c, event)
		}

		existing, err := s.store.Results().GetBySchedule(ctx, sched.ID)
		if err != nil && KindOf(err) != KindNotFound {
			return err
		}
		now := s.clock()
		r := existing
		if r == nil {
			r = newResult(c, sched, actor, now)
		}
		mergeResult(r, in)
		r.UpdatedAt = now

		var to models.CaseStatus
		if finalize {
			if err := s.check(finalizeCheckOf(r)); err != nil {
				return err
			}
			if err := guard(c, EventResultFinalized); err != nil {
				return err
			}
			to, _ = MapProposedStatus(r.CaseStatusAfterResult)
			r.Finalized = true
			r.FinalizedAt = &now
		}

		if existing == nil {
			err = s.store.Results().Insert(ctx, r)
		} else {
			err = s.store.Results().Update(ctx, r)
		}
		if err != nil {
			return err
		}
		result = r

		if !finalize {
			return nil
		}
		ch := change{
			event: EventResultFinalized,
			to:    to,
			phase: r.CaseStatusAfterResult,
			notes: strings.TrimSpace(r.StatusChangeReason),
		}
		if err := s.commit(ctx, c, actor, ch); err != nil {
			return err
		}
		out.add(c.ReporterID, models.NotifyResultFinalized, "Investigation result recorded",
			fmt.Sprintf("The investigation result for report %s has been recorded. The report is now %s.", c.CaseNumber, c.Status),
			&models.RelatedEntity{ID: r.ID, Type: "result"})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetResult returns one result record
func (s *Service) GetResult(ctx context.Context, resultID string) (*models.Result, error) {
	var r *models.Result
	err := s.read(ctx, "get result", func(ctx context.Context) error {
		var err error
		r, err = s.store.Results().Get(ctx, resultID)
		if err != nil && KindOf(err) == KindNotFound {
			return NotFoundError("result", resultID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListResultsForCase returns every result of a case, oldest first
func (s *Service) ListResultsForCase(ctx context.Context, caseID string) ([]models.Result, error) {
	var results []models.Result
	err := s.read(ctx, "list results", func(ctx context.Context) error {
		if _, err := s.loadCase(ctx, caseID); err != nil {
			return err
		}
		var err error
		results, err = s.store.Results().ListByCase(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
