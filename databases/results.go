package databases

// go generate: mockery --name ResultDatabase

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

const resultName = "results"

type resultDatabase struct {
	db DatabaseHelper
}

// NewResultDatabase initializes a new instance of result database with the provided db connection
func NewResultDatabase(db DatabaseHelper) repository.ResultRepository {
	return &resultDatabase{
		db: db,
	}
}

func (c *resultDatabase) Insert(ctx context.Context, r *models.Result) error {
	_, err := c.db.Collection(resultName).InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(repository.ErrDuplicate, "result for schedule %s", r.ScheduleID)
	}
	return errors.Wrap(err, "failed to insert result")
}

func (c *resultDatabase) Update(ctx context.Context, r *models.Result) error {
	matched, err := c.db.Collection(resultName).ReplaceOne(ctx, bson.M{"_id": r.ID}, r)
	if err != nil {
		return errors.Wrap(err, "failed to update result")
	}
	if matched == 0 {
		return notFound("result", r.ID)
	}
	return nil
}

func (c *resultDatabase) findOne(ctx context.Context, filter interface{}, what string) (*models.Result, error) {
	r := &models.Result{}
	err := c.db.Collection(resultName).FindOne(ctx, filter).Decode(r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("result", what)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get result")
	}
	return r, nil
}

func (c *resultDatabase) Get(ctx context.Context, id string) (*models.Result, error) {
	return c.findOne(ctx, bson.M{"_id": id}, id)
}

func (c *resultDatabase) GetBySchedule(ctx context.Context, scheduleID string) (*models.Result, error) {
	return c.findOne(ctx, bson.M{"scheduleId": scheduleID}, "for schedule "+scheduleID)
}

func (c *resultDatabase) ListByCase(ctx context.Context, caseID string) ([]models.Result, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := c.db.Collection(resultName).Find(ctx, bson.M{"caseId": caseID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list results")
	}
	defer cur.Close(ctx)
	results := []models.Result{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, errors.Wrap(err, "failed to decode results")
	}
	return results, nil
}
