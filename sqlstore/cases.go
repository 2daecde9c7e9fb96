package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

const caseColumns = `id, case_number, title, description, category, reporter_id, incident_location,
	incident_date, status, phase, scheduled_date, scheduled_by, scheduled_notes,
	investigation_progress, version, history, created_at, updated_at`

type caseRow struct {
	ID                    string         `db:"id"`
	CaseNumber            string         `db:"case_number"`
	Title                 string         `db:"title"`
	Description           string         `db:"description"`
	Category              string         `db:"category"`
	ReporterID            string         `db:"reporter_id"`
	IncidentLocation      string         `db:"incident_location"`
	IncidentDate          sql.NullString `db:"incident_date"`
	Status                string         `db:"status"`
	Phase                 string         `db:"phase"`
	ScheduledDate         sql.NullString `db:"scheduled_date"`
	ScheduledBy           sql.NullString `db:"scheduled_by"`
	ScheduledNotes        sql.NullString `db:"scheduled_notes"`
	InvestigationProgress int            `db:"investigation_progress"`
	Version               int64          `db:"version"`
	History               string         `db:"history"`
	CreatedAt             string         `db:"created_at"`
	UpdatedAt             string         `db:"updated_at"`
}

func toCaseRow(c *models.Case) (caseRow, error) {
	history, err := encodeJSON(c.History)
	if err != nil {
		return caseRow{}, err
	}
	return caseRow{
		ID:                    c.ID,
		CaseNumber:            c.CaseNumber,
		Title:                 c.Title,
		Description:           c.Description,
		Category:              c.Category,
		ReporterID:            c.ReporterID,
		IncidentLocation:      c.IncidentLocation,
		IncidentDate:          formatTimePtr(c.IncidentDate),
		Status:                string(c.Status),
		Phase:                 string(c.Phase),
		ScheduledDate:         formatTimePtr(c.ScheduledDate),
		ScheduledBy:           nullString(c.ScheduledBy),
		ScheduledNotes:        nullString(c.ScheduledNotes),
		InvestigationProgress: c.InvestigationProgress,
		Version:               c.Version,
		History:               history,
		CreatedAt:             formatTime(c.CreatedAt),
		UpdatedAt:             formatTime(c.UpdatedAt),
	}, nil
}

func (r caseRow) model() (*models.Case, error) {
	var p timeParser
	c := &models.Case{
		ID:                    r.ID,
		CaseNumber:            r.CaseNumber,
		Title:                 r.Title,
		Description:           r.Description,
		Category:              r.Category,
		ReporterID:            r.ReporterID,
		IncidentLocation:      r.IncidentLocation,
		IncidentDate:          p.ptr(r.IncidentDate),
		Status:                models.CaseStatus(r.Status),
		Phase:                 models.ProposedStatus(r.Phase),
		ScheduledDate:         p.ptr(r.ScheduledDate),
		ScheduledBy:           stringPtr(r.ScheduledBy),
		ScheduledNotes:        stringPtr(r.ScheduledNotes),
		InvestigationProgress: r.InvestigationProgress,
		Version:               r.Version,
		CreatedAt:             p.at(r.CreatedAt),
		UpdatedAt:             p.at(r.UpdatedAt),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := decodeJSON(r.History, &c.History); err != nil {
		return nil, err
	}
	return c, nil
}

type caseRepo struct{ s *Store }

func (r caseRepo) Insert(ctx context.Context, c *models.Case) error {
	row, err := toCaseRow(c)
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, r.s.ext(ctx), `INSERT INTO cases (`+caseColumns+`) VALUES (
		:id, :case_number, :title, :description, :category, :reporter_id, :incident_location,
		:incident_date, :status, :phase, :scheduled_date, :scheduled_by, :scheduled_notes,
		:investigation_progress, :version, :history, :created_at, :updated_at)`, row)
	if isUniqueViolation(err) {
		return errors.Wrapf(repository.ErrDuplicate, "case number %s", c.CaseNumber)
	}
	return errors.Wrap(err, "failed to insert case")
}

func (r caseRepo) Get(ctx context.Context, id string) (*models.Case, error) {
	var row caseRow
	err := sqlx.GetContext(ctx, r.s.ext(ctx), &row, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("case", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get case")
	}
	return row.model()
}

func (r caseRepo) Update(ctx context.Context, c *models.Case, expectedVersion int64) error {
	next := *c
	next.Version = expectedVersion + 1
	row, err := toCaseRow(&next)
	if err != nil {
		return err
	}
	res, err := sqlx.NamedExecContext(ctx, r.s.ext(ctx), `UPDATE cases SET
		title = :title, description = :description, category = :category,
		incident_location = :incident_location, incident_date = :incident_date,
		status = :status, phase = :phase, scheduled_date = :scheduled_date,
		scheduled_by = :scheduled_by, scheduled_notes = :scheduled_notes,
		investigation_progress = :investigation_progress, version = :version,
		history = :history, updated_at = :updated_at
		WHERE id = :id AND version = :version - 1`, row)
	if err != nil {
		return errors.Wrap(err, "failed to update case")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to update case")
	}
	if n == 0 {
		var exists int
		err := sqlx.GetContext(ctx, r.s.ext(ctx), &exists, `SELECT COUNT(1) FROM cases WHERE id = ?`, c.ID)
		if err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		if exists == 0 {
			return notFound("case", c.ID)
		}
		return errors.Wrapf(repository.ErrConflict, "case %s expected version %d", c.ID, expectedVersion)
	}
	c.Version = next.Version
	return nil
}

func (r caseRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.s.ext(ctx), &n, `SELECT COUNT(1) FROM cases WHERE case_number LIKE ? ESCAPE '\'`, likeEscape(prefix)+"%")
	return n, errors.Wrap(err, "failed to count case numbers")
}

func (r caseRepo) List(ctx context.Context, q repository.CaseQuery) ([]models.Case, error) {
	where, args := caseWhere("", q.CaseFilter)
	query := `SELECT ` + caseColumns + ` FROM cases` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	var rows []caseRow
	if err := sqlx.SelectContext(ctx, r.s.ext(ctx), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list cases")
	}
	out := make([]models.Case, 0, len(rows))
	for _, row := range rows {
		c, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r caseRepo) Count(ctx context.Context, f models.CaseFilter) (int64, error) {
	where, args := caseWhere("", f)
	var n int64
	err := sqlx.GetContext(ctx, r.s.ext(ctx), &n, `SELECT COUNT(1) FROM cases`+where, args...)
	return n, errors.Wrap(err, "failed to count cases")
}

func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// caseWhere renders the filter as a WHERE clause over the cases table aliased as alias
func caseWhere(alias string, f models.CaseFilter) (string, []interface{}) {
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	var conds []string
	var args []interface{}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + likeEscape(strings.ToLower(term)) + "%"
		conds = append(conds, `(LOWER(`+col("case_number")+`) LIKE ? ESCAPE '\' OR LOWER(`+col("title")+`) LIKE ? ESCAPE '\' OR LOWER(COALESCE(`+col("scheduled_notes")+`, '')) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if len(f.Statuses) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(f.Statuses)), ",")
		conds = append(conds, col("status")+` IN (`+marks+`)`)
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if f.ScheduledFrom != nil {
		conds = append(conds, col("scheduled_date")+` >= ?`)
		args = append(args, formatTime(*f.ScheduledFrom))
	}
	if f.ScheduledTo != nil {
		conds = append(conds, col("scheduled_date")+` <= ?`)
		args = append(args, formatTime(*f.ScheduledTo))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
