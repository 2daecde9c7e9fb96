package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/diantamela/satgas-ppk/models"
)

const scheduleColumns = `id, case_id, start_at, end_at, location, methods, party_types,
	other_parties_detail, consent_obtained, consent_documentation, risk_notes, plan_summary,
	follow_up_action, follow_up_date, follow_up_notes, access_level, notes, created_by,
	created_at, updated_at, superseded_at`

type scheduleRow struct {
	ID                   string         `db:"id"`
	CaseID               string         `db:"case_id"`
	StartAt              string         `db:"start_at"`
	EndAt                string         `db:"end_at"`
	Location             string         `db:"location"`
	Methods              string         `db:"methods"`
	PartyTypes           string         `db:"party_types"`
	OtherPartiesDetail   string         `db:"other_parties_detail"`
	ConsentObtained      bool           `db:"consent_obtained"`
	ConsentDocumentation string         `db:"consent_documentation"`
	RiskNotes            string         `db:"risk_notes"`
	PlanSummary          string         `db:"plan_summary"`
	FollowUpAction       string         `db:"follow_up_action"`
	FollowUpDate         sql.NullString `db:"follow_up_date"`
	FollowUpNotes        string         `db:"follow_up_notes"`
	AccessLevel          string         `db:"access_level"`
	Notes                string         `db:"notes"`
	CreatedBy            string         `db:"created_by"`
	CreatedAt            string         `db:"created_at"`
	UpdatedAt            string         `db:"updated_at"`
	SupersededAt         sql.NullString `db:"superseded_at"`
}

type memberRow struct {
	ScheduleID string `db:"schedule_id"`
	Position   int    `db:"position"`
	MemberID   string `db:"member_id"`
	Role       string `db:"role"`
	CustomRole string `db:"custom_role"`
}

func toScheduleRow(s *models.Schedule) (scheduleRow, error) {
	methods, err := encodeJSON(s.Methods)
	if err != nil {
		return scheduleRow{}, err
	}
	parties, err := encodeJSON(s.PartyTypes)
	if err != nil {
		return scheduleRow{}, err
	}
	return scheduleRow{
		ID:                   s.ID,
		CaseID:               s.CaseID,
		StartAt:              formatTime(s.Start),
		EndAt:                formatTime(s.End),
		Location:             s.Location,
		Methods:              methods,
		PartyTypes:           parties,
		OtherPartiesDetail:   s.OtherPartiesDetail,
		ConsentObtained:      s.ConsentObtained,
		ConsentDocumentation: s.ConsentDocumentation,
		RiskNotes:            s.RiskNotes,
		PlanSummary:          s.PlanSummary,
		FollowUpAction:       s.FollowUpAction,
		FollowUpDate:         formatTimePtr(s.FollowUpDate),
		FollowUpNotes:        s.FollowUpNotes,
		AccessLevel:          string(s.AccessLevel),
		Notes:                s.Notes,
		CreatedBy:            s.CreatedBy,
		CreatedAt:            formatTime(s.CreatedAt),
		UpdatedAt:            formatTime(s.UpdatedAt),
		SupersededAt:         formatTimePtr(s.SupersededAt),
	}, nil
}

func (r scheduleRow) model() (*models.Schedule, error) {
	var p timeParser
	s := &models.Schedule{
		ID:                   r.ID,
		CaseID:               r.CaseID,
		Start:                p.at(r.StartAt),
		End:                  p.at(r.EndAt),
		Location:             r.Location,
		OtherPartiesDetail:   r.OtherPartiesDetail,
		ConsentObtained:      r.ConsentObtained,
		ConsentDocumentation: r.ConsentDocumentation,
		RiskNotes:            r.RiskNotes,
		PlanSummary:          r.PlanSummary,
		FollowUpAction:       r.FollowUpAction,
		FollowUpDate:         p.ptr(r.FollowUpDate),
		FollowUpNotes:        r.FollowUpNotes,
		AccessLevel:          models.AccessLevel(r.AccessLevel),
		Notes:                r.Notes,
		CreatedBy:            r.CreatedBy,
		CreatedAt:            p.at(r.CreatedAt),
		UpdatedAt:            p.at(r.UpdatedAt),
		SupersededAt:         p.ptr(r.SupersededAt),
		Team:                 []models.TeamMember{},
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := decodeJSON(r.Methods, &s.Methods); err != nil {
		return nil, err
	}
	if err := decodeJSON(r.PartyTypes, &s.PartyTypes); err != nil {
		return nil, err
	}
	return s, nil
}

type scheduleRepo struct{ s *Store }

func (r scheduleRepo) Insert(ctx context.Context, s *models.Schedule) error {
	row, err := toScheduleRow(s)
	if err != nil {
		return err
	}
	ext := r.s.ext(ctx)
	_, err = sqlx.NamedExecContext(ctx, ext, `INSERT INTO schedules (`+scheduleColumns+`) VALUES (
		:id, :case_id, :start_at, :end_at, :location, :methods, :party_types,
		:other_parties_detail, :consent_obtained, :consent_documentation, :risk_notes, :plan_summary,
		:follow_up_action, :follow_up_date, :follow_up_notes, :access_level, :notes, :created_by,
		:created_at, :updated_at, :superseded_at)`, row)
	if err != nil {
		return errors.Wrap(err, "failed to insert schedule")
	}
	return r.writeTeam(ctx, ext, s)
}

func (r scheduleRepo) writeTeam(ctx context.Context, ext sqlx.ExtContext, s *models.Schedule) error {
	if _, err := ext.ExecContext(ctx, `DELETE FROM schedule_team_members WHERE schedule_id = ?`, s.ID); err != nil {
		return errors.Wrap(err, "failed to clear schedule team")
	}
	for i, m := range s.Team {
		row := memberRow{ScheduleID: s.ID, Position: i, MemberID: m.MemberID, Role: string(m.Role), CustomRole: m.CustomRole}
		_, err := sqlx.NamedExecContext(ctx, ext, `INSERT INTO schedule_team_members
			(schedule_id, position, member_id, role, custom_role)
			VALUES (:schedule_id, :position, :member_id, :role, :custom_role)`, row)
		if err != nil {
			return errors.Wrap(err, "failed to insert schedule team member")
		}
	}
	return nil
}

func (r scheduleRepo) loadTeam(ctx context.Context, s *models.Schedule) error {
	var rows []memberRow
	err := sqlx.SelectContext(ctx, r.s.ext(ctx), &rows, `SELECT schedule_id, position, member_id, role, custom_role
		FROM schedule_team_members WHERE schedule_id = ? ORDER BY position`, s.ID)
	if err != nil {
		return errors.Wrap(err, "failed to load schedule team")
	}
	s.Team = make([]models.TeamMember, 0, len(rows))
	for _, m := range rows {
		s.Team = append(s.Team, models.TeamMember{MemberID: m.MemberID, Role: models.TeamRole(m.Role), CustomRole: m.CustomRole})
	}
	return nil
}

func (r scheduleRepo) one(ctx context.Context, what, query string, args ...interface{}) (*models.Schedule, error) {
	var row scheduleRow
	err := sqlx.GetContext(ctx, r.s.ext(ctx), &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("schedule", what)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get schedule")
	}
	s, err := row.model()
	if err != nil {
		return nil, err
	}
	if err := r.loadTeam(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r scheduleRepo) Get(ctx context.Context, id string) (*models.Schedule, error) {
	return r.one(ctx, id, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
}

func (r scheduleRepo) Active(ctx context.Context, caseID string) (*models.Schedule, error) {
	return r.one(ctx, "active for case "+caseID, `SELECT `+scheduleColumns+` FROM schedules
		WHERE case_id = ? AND superseded_at IS NULL ORDER BY created_at DESC LIMIT 1`, caseID)
}

func (r scheduleRepo) Update(ctx context.Context, s *models.Schedule) error {
	row, err := toScheduleRow(s)
	if err != nil {
		return err
	}
	ext := r.s.ext(ctx)
	res, err := sqlx.NamedExecContext(ctx, ext, `UPDATE schedules SET
		start_at = :start_at, end_at = :end_at, location = :location, methods = :methods,
		party_types = :party_types, other_parties_detail = :other_parties_detail,
		consent_obtained = :consent_obtained, consent_documentation = :consent_documentation,
		risk_notes = :risk_notes, plan_summary = :plan_summary, follow_up_action = :follow_up_action,
		follow_up_date = :follow_up_date, follow_up_notes = :follow_up_notes,
		access_level = :access_level, notes = :notes, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return errors.Wrap(err, "failed to update schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("schedule", s.ID)
	}
	return r.writeTeam(ctx, ext, s)
}

func (r scheduleRepo) Supersede(ctx context.Context, id string, at time.Time) error {
	res, err := r.s.ext(ctx).ExecContext(ctx, `UPDATE schedules SET superseded_at = ?, updated_at = ? WHERE id = ? AND superseded_at IS NULL`,
		formatTime(at), formatTime(at), id)
	if err != nil {
		return errors.Wrap(err, "failed to supersede schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("active schedule", id)
	}
	return nil
}

func (r scheduleRepo) Delete(ctx context.Context, id string) error {
	// the roster goes with it via ON DELETE CASCADE; a referencing result blocks the delete
	res, err := r.s.ext(ctx).ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("schedule", id)
	}
	return nil
}
