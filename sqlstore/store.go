// Package sqlstore is the embedded SQLite backend of the repository contracts.
package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/diantamela/satgas-ppk/repository"
)

// openDB is a package-level var to allow test injection
var openDB = sqlx.Open

var pragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// Store implements repository.Store on one SQLite file
type Store struct {
	db *sqlx.DB
}

var _ repository.Store = (*Store)(nil)

func dsn(path string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if needed) the database at path and migrates the schema
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "sqlstore: create data dir")
		}
	}
	db, err := openDB("sqlite", dsn(path))
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: open database")
	}
	// one connection serializes writers and keeps every tx on the pragma'd handle
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates any missing tables and indexes
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "sqlstore: migrate %q", firstLine(stmt))
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i > 0 {
		return s[:i]
	}
	return s
}

// Close closes the database
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// Ping checks the database file is usable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type txKey struct{}

// WithTransaction runs fn in a transaction carried by the context handed to fn
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "sqlstore: begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "sqlstore: commit transaction")
	}
	return nil
}

// ext returns the transaction carried by ctx, or the pool outside a transaction
func (s *Store) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return s.db
}

// Cases returns the case repository
func (s *Store) Cases() repository.CaseRepository { return caseRepo{s} }

// Schedules returns the schedule repository
func (s *Store) Schedules() repository.ScheduleRepository { return scheduleRepo{s} }

// Activities returns the activity repository
func (s *Store) Activities() repository.ActivityRepository { return activityRepo{s} }

// Results returns the result repository
func (s *Store) Results() repository.ResultRepository { return resultRepo{s} }

// Notifications returns the notification repository
func (s *Store) Notifications() repository.NotificationRepository { return notificationRepo{s} }

// Summaries returns the enriched listing repository
func (s *Store) Summaries() repository.SummaryRepository { return summaryRepo{s} }

// isUniqueViolation checks if an error is a SQLite UNIQUE constraint violation
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(entity, id string) error {
	return errors.Wrap(repository.ErrNotFound, fmt.Sprintf("%s %s", entity, id))
}
