package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/diantamela/satgas-ppk/models"
)

const activityColumns = `id, case_id, schedule_id, type, type_detail, title, description, location,
	start_at, end_at, participants, outcome, challenges, recommendations, confidential,
	access_level, conducted_by, attachments, created_at`

type activityRow struct {
	ID              string         `db:"id"`
	CaseID          string         `db:"case_id"`
	ScheduleID      sql.NullString `db:"schedule_id"`
	Type            string         `db:"type"`
	TypeDetail      string         `db:"type_detail"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	Location        string         `db:"location"`
	StartAt         sql.NullString `db:"start_at"`
	EndAt           sql.NullString `db:"end_at"`
	Participants    string         `db:"participants"`
	Outcome         string         `db:"outcome"`
	Challenges      string         `db:"challenges"`
	Recommendations string         `db:"recommendations"`
	Confidential    bool           `db:"confidential"`
	AccessLevel     string         `db:"access_level"`
	ConductedBy     string         `db:"conducted_by"`
	Attachments     string         `db:"attachments"`
	CreatedAt       string         `db:"created_at"`
}

type activityRepo struct{ s *Store }

func (r activityRepo) Insert(ctx context.Context, a *models.Activity) error {
	participants, err := encodeJSON(a.Participants)
	if err != nil {
		return err
	}
	attachments, err := encodeJSON(a.Attachments)
	if err != nil {
		return err
	}
	row := activityRow{
		ID:              a.ID,
		CaseID:          a.CaseID,
		ScheduleID:      nullString(a.ScheduleID),
		Type:            string(a.Type),
		TypeDetail:      a.TypeDetail,
		Title:           a.Title,
		Description:     a.Description,
		Location:        a.Location,
		StartAt:         formatTimePtr(a.Start),
		EndAt:           formatTimePtr(a.End),
		Participants:    participants,
		Outcome:         a.Outcome,
		Challenges:      a.Challenges,
		Recommendations: a.Recommendations,
		Confidential:    a.Confidential,
		AccessLevel:     string(a.AccessLevel),
		ConductedBy:     a.ConductedBy,
		Attachments:     attachments,
		CreatedAt:       formatTime(a.CreatedAt),
	}
	_, err = sqlx.NamedExecContext(ctx, r.s.ext(ctx), `INSERT INTO activities (`+activityColumns+`) VALUES (
		:id, :case_id, :schedule_id, :type, :type_detail, :title, :description, :location,
		:start_at, :end_at, :participants, :outcome, :challenges, :recommendations, :confidential,
		:access_level, :conducted_by, :attachments, :created_at)`, row)
	return errors.Wrap(err, "failed to insert activity")
}

func (r activityRepo) ListByCase(ctx context.Context, caseID string) ([]models.Activity, error) {
	var rows []activityRow
	err := sqlx.SelectContext(ctx, r.s.ext(ctx), &rows, `SELECT `+activityColumns+` FROM activities
		WHERE case_id = ? ORDER BY created_at DESC, rowid DESC`, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list activities")
	}
	out := make([]models.Activity, 0, len(rows))
	for _, row := range rows {
		var p timeParser
		a := models.Activity{
			ID:              row.ID,
			CaseID:          row.CaseID,
			ScheduleID:      stringPtr(row.ScheduleID),
			Type:            models.ActivityType(row.Type),
			TypeDetail:      row.TypeDetail,
			Title:           row.Title,
			Description:     row.Description,
			Location:        row.Location,
			Start:           p.ptr(row.StartAt),
			End:             p.ptr(row.EndAt),
			Outcome:         row.Outcome,
			Challenges:      row.Challenges,
			Recommendations: row.Recommendations,
			Confidential:    row.Confidential,
			AccessLevel:     models.AccessLevel(row.AccessLevel),
			ConductedBy:     row.ConductedBy,
			CreatedAt:       p.at(row.CreatedAt),
		}
		if p.err != nil {
			return nil, p.err
		}
		if err := decodeJSON(row.Participants, &a.Participants); err != nil {
			return nil, err
		}
		if err := decodeJSON(row.Attachments, &a.Attachments); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
