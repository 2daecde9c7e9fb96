package sqlstore

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cases (
		id                     TEXT PRIMARY KEY,
		case_number            TEXT NOT NULL UNIQUE,
		title                  TEXT NOT NULL,
		description            TEXT NOT NULL DEFAULT '',
		category               TEXT NOT NULL DEFAULT '',
		reporter_id            TEXT NOT NULL,
		incident_location      TEXT NOT NULL DEFAULT '',
		incident_date          TEXT,
		status                 TEXT NOT NULL,
		phase                  TEXT NOT NULL DEFAULT '',
		scheduled_date         TEXT,
		scheduled_by           TEXT,
		scheduled_notes        TEXT,
		investigation_progress INTEGER NOT NULL DEFAULT 0,
		version                INTEGER NOT NULL DEFAULT 1,
		history                TEXT NOT NULL DEFAULT '[]',
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_created ON cases(created_at)`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id                    TEXT PRIMARY KEY,
		case_id               TEXT NOT NULL REFERENCES cases(id),
		start_at              TEXT NOT NULL,
		end_at                TEXT NOT NULL,
		location              TEXT NOT NULL,
		methods               TEXT NOT NULL DEFAULT '[]',
		party_types           TEXT NOT NULL DEFAULT '[]',
		other_parties_detail  TEXT NOT NULL DEFAULT '',
		consent_obtained      INTEGER NOT NULL DEFAULT 0,
		consent_documentation TEXT NOT NULL DEFAULT '',
		risk_notes            TEXT NOT NULL DEFAULT '',
		plan_summary          TEXT NOT NULL DEFAULT '',
		follow_up_action      TEXT NOT NULL DEFAULT '',
		follow_up_date        TEXT,
		follow_up_notes       TEXT NOT NULL DEFAULT '',
		access_level          TEXT NOT NULL DEFAULT '',
		notes                 TEXT NOT NULL DEFAULT '',
		created_by            TEXT NOT NULL,
		created_at            TEXT NOT NULL,
		updated_at            TEXT NOT NULL,
		superseded_at         TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_case ON schedules(case_id, superseded_at)`,

	`CREATE TABLE IF NOT EXISTS schedule_team_members (
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		member_id   TEXT NOT NULL,
		role        TEXT NOT NULL,
		custom_role TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (schedule_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS activities (
		id              TEXT PRIMARY KEY,
		case_id         TEXT NOT NULL REFERENCES cases(id),
		schedule_id     TEXT,
		type            TEXT NOT NULL,
		type_detail     TEXT NOT NULL DEFAULT '',
		title           TEXT NOT NULL DEFAULT '',
		description     TEXT NOT NULL DEFAULT '',
		location        TEXT NOT NULL DEFAULT '',
		start_at        TEXT,
		end_at          TEXT,
		participants    TEXT NOT NULL DEFAULT '[]',
		outcome         TEXT NOT NULL DEFAULT '',
		challenges      TEXT NOT NULL DEFAULT '',
		recommendations TEXT NOT NULL DEFAULT '',
		confidential    INTEGER NOT NULL DEFAULT 0,
		access_level    TEXT NOT NULL DEFAULT '',
		conducted_by    TEXT NOT NULL,
		attachments     TEXT NOT NULL DEFAULT '[]',
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activities_case ON activities(case_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS results (
		id          TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL UNIQUE REFERENCES schedules(id),
		case_id     TEXT NOT NULL REFERENCES cases(id),
		finalized   INTEGER NOT NULL DEFAULT 0,
		document    TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_results_case ON results(case_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id                  TEXT PRIMARY KEY,
		recipient_id        TEXT NOT NULL,
		category            TEXT NOT NULL,
		title               TEXT NOT NULL,
		message             TEXT NOT NULL,
		related_entity_id   TEXT NOT NULL DEFAULT '',
		related_entity_type TEXT NOT NULL DEFAULT '',
		is_read             INTEGER NOT NULL DEFAULT 0,
		read_at             TEXT,
		created_at          TEXT NOT NULL,
		delivered_at        TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_undelivered ON notifications(delivered_at)`,
}
