package databases

// go generate: mockery --name ActivityDatabase

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

const activityName = "activities"

type activityDatabase struct {
	db DatabaseHelper
}

// NewActivityDatabase initializes a new instance of activity database with the provided db connection
func NewActivityDatabase(db DatabaseHelper) repository.ActivityRepository {
	return &activityDatabase{
		db: db,
	}
}

func (c *activityDatabase) Insert(ctx context.Context, a *models.Activity) error {
	_, err := c.db.Collection(activityName).InsertOne(ctx, a)
	return errors.Wrap(err, "failed to insert activity")
}

func (c *activityDatabase) ListByCase(ctx context.Context, caseID string) ([]models.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := c.db.Collection(activityName).Find(ctx, bson.M{"caseId": caseID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list activities")
	}
	defer cur.Close(ctx)
	activities := []models.Activity{}
	if err := cur.All(ctx, &activities); err != nil {
		return nil, errors.Wrap(err, "failed to decode activities")
	}
	return activities, nil
}
