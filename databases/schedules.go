package databases

// go generate: mockery --name ScheduleDatabase

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

const scheduleName = "schedules"

type scheduleDatabase struct {
	db DatabaseHelper
}

// NewScheduleDatabase initializes a new instance of schedule database with the provided db connection.
// The roster is embedded in the schedule document.
func NewScheduleDatabase(db DatabaseHelper) repository.ScheduleRepository {
	return &scheduleDatabase{
		db: db,
	}
}

func (c *scheduleDatabase) Insert(ctx context.Context, s *models.Schedule) error {
	_, err := c.db.Collection(scheduleName).InsertOne(ctx, s)
	return errors.Wrap(err, "failed to insert schedule")
}

func (c *scheduleDatabase) findOne(ctx context.Context, filter interface{}, what string, opts ...*options.FindOneOptions) (*models.Schedule, error) {
	s := &models.Schedule{}
	err := c.db.Collection(scheduleName).FindOne(ctx, filter, opts...).Decode(s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("schedule", what)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get schedule")
	}
	return s, nil
}

func (c *scheduleDatabase) Get(ctx context.Context, id string) (*models.Schedule, error) {
	return c.findOne(ctx, bson.M{"_id": id}, id)
}

func (c *scheduleDatabase) Active(ctx context.Context, caseID string) (*models.Schedule, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return c.findOne(ctx, bson.M{"caseId": caseID, "supersededAt": nil}, "active for case "+caseID, opts)
}

func (c *scheduleDatabase) Update(ctx context.Context, s *models.Schedule) error {
	matched, err := c.db.Collection(scheduleName).ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return errors.Wrap(err, "failed to update schedule")
	}
	if matched == 0 {
		return notFound("schedule", s.ID)
	}
	return nil
}

func (c *scheduleDatabase) Supersede(ctx context.Context, id string, at time.Time) error {
	_, err := c.db.Collection(scheduleName).UpdateOne(ctx,
		bson.M{"_id": id, "supersededAt": nil},
		bson.M{"$set": bson.M{"supersededAt": at, "updatedAt": at}})
	return errors.Wrap(err, "failed to supersede schedule")
}

// ErrScheduleReferenced is returned when deleting a schedule a result still points at
var ErrScheduleReferenced = errors.New("schedule is referenced by a result")

func (c *scheduleDatabase) Delete(ctx context.Context, id string) error {
	refs, err := c.db.Collection(resultName).CountDocuments(ctx, bson.M{"scheduleId": id})
	if err != nil {
		return errors.Wrap(err, "failed to count schedule results")
	}
	if refs > 0 {
		return errors.Wrapf(ErrScheduleReferenced, "failed to delete schedule %s", id)
	}
	deleted, err := c.db.Collection(scheduleName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "failed to delete schedule")
	}
	if deleted == 0 {
		return notFound("schedule", id)
	}
	return nil
}
