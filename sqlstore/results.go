package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

// results keep the berita acara body as one JSON document; the indexed columns are copies
type resultRow struct {
	ID         string `db:"id"`
	ScheduleID string `db:"schedule_id"`
	CaseID     string `db:"case_id"`
	Finalized  bool   `db:"finalized"`
	Document   string `db:"document"`
	CreatedAt  string `db:"created_at"`
	UpdatedAt  string `db:"updated_at"`
}

func toResultRow(r *models.Result) (resultRow, error) {
	doc, err := json.Marshal(r)
	if err != nil {
		return resultRow{}, errors.Wrap(err, "sqlstore: encode result")
	}
	return resultRow{
		ID:         r.ID,
		ScheduleID: r.ScheduleID,
		CaseID:     r.CaseID,
		Finalized:  r.Finalized,
		Document:   string(doc),
		CreatedAt:  formatTime(r.CreatedAt),
		UpdatedAt:  formatTime(r.UpdatedAt),
	}, nil
}

func (row resultRow) model() (*models.Result, error) {
	r := &models.Result{}
	if err := decodeJSON(row.Document, r); err != nil {
		return nil, err
	}
	return r, nil
}

type resultRepo struct{ s *Store }

func (r resultRepo) Insert(ctx context.Context, res *models.Result) error {
	row, err := toResultRow(res)
	if err != nil {
		return err
	}
	_, err = sqlx.NamedExecContext(ctx, r.s.ext(ctx), `INSERT INTO results
		(id, schedule_id, case_id, finalized, document, created_at, updated_at)
		VALUES (:id, :schedule_id, :case_id, :finalized, :document, :created_at, :updated_at)`, row)
	if isUniqueViolation(err) {
		return errors.Wrapf(repository.ErrDuplicate, "result for schedule %s", res.ScheduleID)
	}
	return errors.Wrap(err, "failed to insert result")
}

func (r resultRepo) Update(ctx context.Context, res *models.Result) error {
	row, err := toResultRow(res)
	if err != nil {
		return err
	}
	out, err := sqlx.NamedExecContext(ctx, r.s.ext(ctx), `UPDATE results SET
		finalized = :finalized, document = :document, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return errors.Wrap(err, "failed to update result")
	}
	if n, _ := out.RowsAffected(); n == 0 {
		return notFound("result", res.ID)
	}
	return nil
}

func (r resultRepo) one(ctx context.Context, what, query string, arg string) (*models.Result, error) {
	var row resultRow
	err := sqlx.GetContext(ctx, r.s.ext(ctx), &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("result", what)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get result")
	}
	return row.model()
}

func (r resultRepo) Get(ctx context.Context, id string) (*models.Result, error) {
	return r.one(ctx, id, `SELECT * FROM results WHERE id = ?`, id)
}

func (r resultRepo) GetBySchedule(ctx context.Context, scheduleID string) (*models.Result, error) {
	return r.one(ctx, "for schedule "+scheduleID, `SELECT * FROM results WHERE schedule_id = ?`, scheduleID)
}

func (r resultRepo) ListByCase(ctx context.Context, caseID string) ([]models.Result, error) {
	var rows []resultRow
	err := sqlx.SelectContext(ctx, r.s.ext(ctx), &rows, `SELECT * FROM results WHERE case_id = ? ORDER BY created_at, rowid`, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list results")
	}
	out := make([]models.Result, 0, len(rows))
	for _, row := range rows {
		res, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}
