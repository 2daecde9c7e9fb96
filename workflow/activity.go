package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diantamela/satgas-ppk/models"
)

// ActivityInput is one investigation log entry
type ActivityInput struct {
	ScheduleID      *string             `json:"scheduleId"`
	Type            models.ActivityType `json:"type"`
	TypeDetail      string              `json:"typeDetail"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Location        string              `json:"location"`
	Start           *time.Time          `json:"start"`
	End             *time.Time          `json:"end"`
	Participants    []string            `json:"participants"`
	Outcome         string              `json:"outcome"`
	Challenges      string              `json:"challenges"`
	Recommendations string              `json:"recommendations"`
	Confidential    bool                `json:"confidential"`
	AccessLevel     models.AccessLevel  `json:"accessLevel"`
	Attachments     []models.FileRef    `json:"attachments"`
}

// RecordActivity appends to the case's activity log. It never changes the case status.
func (s *Service) RecordActivity(ctx context.Context, actor models.Actor, caseID string, in ActivityInput) (*models.Activity, error) {
	const op = "record activity"
	if err := requireHandler(actor, op); err != nil {
		return nil, classify(op, err)
	}
	if in.Type == "" {
		in.Type = models.ActivityOther
	}
	if !in.Type.Valid() {
		return nil, classify(op, ValidationError("type", "unknown activity type "+string(in.Type)))
	}
	if !in.AccessLevel.Valid() {
		return nil, classify(op, ValidationError("accessLevel", "unknown access level"))
	}
	if in.Participants == nil {
		in.Participants = []string{}
	}
	if in.Attachments == nil {
		in.Attachments = []models.FileRef{}
	}

	var a *models.Activity
	err := s.atomically(ctx, op, func(ctx context.Context, _ *outbox) error {
		if _, err := s.loadCase(ctx, caseID); err != nil {
			return err
		}
		a = &models.Activity{
			ID:              uuid.NewString(),
			CaseID:          caseID,
			ScheduleID:      in.ScheduleID,
			Type:            in.Type,
			TypeDetail:      strings.TrimSpace(in.TypeDetail),
			Title:           in.Title,
			Description:     in.Description,
			Location:        in.Location,
			Start:           models.TimestampPtr(in.Start),
			End:             models.TimestampPtr(in.End),
			Participants:    in.Participants,
			Outcome:         in.Outcome,
			Challenges:      in.Challenges,
			Recommendations: in.Recommendations,
			Confidential:    in.Confidential,
			AccessLevel:     in.AccessLevel,
			ConductedBy:     actor.ID,
			Attachments:     in.Attachments,
			CreatedAt:       s.clock(),
		}
		return s.store.Activities().Insert(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListActivities returns the case's activity log, newest first
func (s *Service) ListActivities(ctx context.Context, caseID string) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.read(ctx, "list activities", func(ctx context.Context) error {
		if _, err := s.loadCase(ctx, caseID); err != nil {
			return err
		}
		var err error
		activities, err = s.store.Activities().ListByCase(ctx, caseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}
