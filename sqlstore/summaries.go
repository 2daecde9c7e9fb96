package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

// summaryQuery joins each case with its most recent schedule and counts the documents
// attached to its activities and results
const summaryQuery = `SELECT
	c.id, c.case_number, c.title, c.category, c.reporter_id, c.status, c.phase,
	c.scheduled_date, c.scheduled_notes, c.investigation_progress, c.created_at, c.updated_at,
	s.id AS s_id, s.start_at AS s_start, s.end_at AS s_end, s.location AS s_location,
	s.superseded_at AS s_superseded,
	(SELECT COALESCE(SUM(json_array_length(a.attachments)), 0) FROM activities a WHERE a.case_id = c.id) +
	(SELECT COALESCE(SUM(json_array_length(r.document, '$.evidence')), 0) FROM results r WHERE r.case_id = c.id)
		AS document_count
FROM cases c
LEFT JOIN schedules s ON s.id = (
	SELECT s2.id FROM schedules s2 WHERE s2.case_id = c.id ORDER BY s2.created_at DESC LIMIT 1
)`

type summaryRow struct {
	ID                    string         `db:"id"`
	CaseNumber            string         `db:"case_number"`
	Title                 string         `db:"title"`
	Category              string         `db:"category"`
	ReporterID            string         `db:"reporter_id"`
	Status                string         `db:"status"`
	Phase                 string         `db:"phase"`
	ScheduledDate         sql.NullString `db:"scheduled_date"`
	ScheduledNotes        sql.NullString `db:"scheduled_notes"`
	InvestigationProgress int            `db:"investigation_progress"`
	CreatedAt             string         `db:"created_at"`
	UpdatedAt             string         `db:"updated_at"`

	ScheduleID         sql.NullString `db:"s_id"`
	ScheduleStart      sql.NullString `db:"s_start"`
	ScheduleEnd        sql.NullString `db:"s_end"`
	ScheduleLocation   sql.NullString `db:"s_location"`
	ScheduleSuperseded sql.NullString `db:"s_superseded"`

	DocumentCount int64 `db:"document_count"`
}

type summaryRepo struct{ s *Store }

func (r summaryRepo) ListSummaries(ctx context.Context, q repository.CaseQuery) ([]models.CaseSummary, error) {
	where, args := caseWhere("c", q.CaseFilter)
	query := summaryQuery + where + ` ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`
	args = append(args, q.Limit, q.Offset)

	var rows []summaryRow
	if err := sqlx.SelectContext(ctx, r.s.ext(ctx), &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to list case summaries")
	}
	out := make([]models.CaseSummary, 0, len(rows))
	for _, row := range rows {
		var p timeParser
		count := row.DocumentCount
		sum := models.CaseSummary{
			ID:                    row.ID,
			CaseNumber:            row.CaseNumber,
			Title:                 row.Title,
			Category:              row.Category,
			ReporterID:            row.ReporterID,
			Status:                models.CaseStatus(row.Status),
			Phase:                 models.ProposedStatus(row.Phase),
			ScheduledDate:         p.ptr(row.ScheduledDate),
			ScheduledNotes:        stringPtr(row.ScheduledNotes),
			InvestigationProgress: row.InvestigationProgress,
			CreatedAt:             p.at(row.CreatedAt),
			UpdatedAt:             p.at(row.UpdatedAt),
			DocumentCount:         &count,
		}
		if row.ScheduleID.Valid {
			sum.LatestSchedule = &models.ScheduleSummary{
				ID:       row.ScheduleID.String,
				Start:    p.at(row.ScheduleStart.String),
				End:      p.at(row.ScheduleEnd.String),
				Location: row.ScheduleLocation.String,
				Active:   !row.ScheduleSuperseded.Valid,
			}
		}
		if p.err != nil {
			return nil, p.err
		}
		out = append(out, sum)
	}
	return out, nil
}
