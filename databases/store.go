package databases

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diantamela/satgas-ppk/repository"
)

// Store implements repository.Store on a MongoDB database. Transactions need a replica set.
type Store struct {
	db DatabaseHelper
}

var _ repository.Store = (*Store)(nil)

// NewStore wraps db
func NewStore(db DatabaseHelper) *Store {
	return &Store{db: db}
}

type sessionKey struct{}

// WithTransaction runs fn inside a session transaction. The session context handed to
// fn is what the driver uses to join reads and writes to the transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(sessionKey{}) != nil {
		return fn(ctx)
	}
	session, err := s.db.Client().StartSession()
	if err != nil {
		return errors.Wrap(err, "failed to start session")
	}
	defer session.EndSession(context.WithoutCancel(ctx))
	return session.WithTransaction(ctx, func(sc context.Context) error {
		return fn(context.WithValue(sc, sessionKey{}, true))
	})
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

// Ping checks the server is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx)
}

// Cases returns the case repository
func (s *Store) Cases() repository.CaseRepository { return NewCaseDatabase(s.db) }

// Schedules returns the schedule repository
func (s *Store) Schedules() repository.ScheduleRepository { return NewScheduleDatabase(s.db) }

// Activities returns the activity repository
func (s *Store) Activities() repository.ActivityRepository { return NewActivityDatabase(s.db) }

// Results returns the result repository
func (s *Store) Results() repository.ResultRepository { return NewResultDatabase(s.db) }

// Notifications returns the notification repository
func (s *Store) Notifications() repository.NotificationRepository {
	return NewNotificationDatabase(s.db)
}

// Summaries returns the enriched listing repository
func (s *Store) Summaries() repository.SummaryRepository { return NewSummaryDatabase(s.db) }

// indexes per collection
var indexes = map[string][]mongo.IndexModel{
	caseName: {
		{Keys: bson.D{{Key: "caseNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "scheduledDate", Value: 1}}},
	},
	scheduleName: {
		{Keys: bson.D{{Key: "caseId", Value: 1}, {Key: "supersededAt", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	activityName: {
		{Keys: bson.D{{Key: "caseId", Value: 1}, {Key: "createdAt", Value: -1}}},
	},
	resultName: {
		{Keys: bson.D{{Key: "scheduleId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "caseId", Value: 1}, {Key: "createdAt", Value: 1}}},
	},
	notificationName: {
		{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "deliveredAt", Value: 1}}},
	},
}

// EnsureIndexes creates the indexes the repositories rely on, including the unique
// case number and one result per schedule
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, name := range []string{caseName, scheduleName, activityName, resultName, notificationName} {
		if err := s.db.Collection(name).CreateIndexes(ctx, indexes[name]); err != nil {
			return errors.Wrapf(err, "failed to create indexes on %s", name)
		}
	}
	return nil
}
