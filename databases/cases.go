package databases

// go generate: mockery --name CaseDatabase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

const caseName = "cases"

type caseDatabase struct {
	db DatabaseHelper
}

// NewCaseDatabase initializes a new instance of case database with the provided db connection
func NewCaseDatabase(db DatabaseHelper) repository.CaseRepository {
	return &caseDatabase{
		db: db,
	}
}

func (c *caseDatabase) Insert(ctx context.Context, cs *models.Case) error {
	_, err := c.db.Collection(caseName).InsertOne(ctx, cs)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(repository.ErrDuplicate, "case number %s", cs.CaseNumber)
	}
	return errors.Wrap(err, "failed to insert case")
}

func (c *caseDatabase) Get(ctx context.Context, id string) (*models.Case, error) {
	cs := &models.Case{}
	err := c.db.Collection(caseName).FindOne(ctx, bson.M{"_id": id}).Decode(cs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("case", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get case")
	}
	return cs, nil
}

func (c *caseDatabase) Update(ctx context.Context, cs *models.Case, expectedVersion int64) error {
	next := *cs
	next.Version = expectedVersion + 1
	matched, err := c.db.Collection(caseName).ReplaceOne(ctx, bson.M{"_id": cs.ID, "version": expectedVersion}, next)
	if err != nil {
		return errors.Wrap(err, "failed to update case")
	}
	if matched == 0 {
		exists, err := c.db.Collection(caseName).CountDocuments(ctx, bson.M{"_id": cs.ID})
		if err != nil {
			return errors.Wrap(err, "failed to update case")
		}
		if exists == 0 {
			return notFound("case", cs.ID)
		}
		return errors.Wrapf(repository.ErrConflict, "case %s expected version %d", cs.ID, expectedVersion)
	}
	cs.Version = next.Version
	return nil
}

func (c *caseDatabase) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	filter := bson.M{"caseNumber": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}
	n, err := c.db.Collection(caseName).CountDocuments(ctx, filter)
	return n, errors.Wrap(err, "failed to count case numbers")
}

func (c *caseDatabase) List(ctx context.Context, q repository.CaseQuery) ([]models.Case, error) {
	opts := newMongoPaginate(q.Limit, q.Offset).getPaginatedOpts()
	cur, err := c.db.Collection(caseName).Find(ctx, caseFilter(q.CaseFilter), opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list cases")
	}
	defer cur.Close(ctx)
	cases := []models.Case{}
	if err := cur.All(ctx, &cases); err != nil {
		return nil, errors.Wrap(err, "failed to decode cases")
	}
	return cases, nil
}

func (c *caseDatabase) Count(ctx context.Context, f models.CaseFilter) (int64, error) {
	n, err := c.db.Collection(caseName).CountDocuments(ctx, caseFilter(f))
	return n, errors.Wrap(err, "failed to count cases")
}

// caseFilter renders the listing filter as a query document
func caseFilter(f models.CaseFilter) bson.M {
	filter := bson.M{}
	if term := strings.TrimSpace(f.Search); term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"caseNumber": re},
			bson.M{"title": re},
			bson.M{"scheduledNotes": re},
		}
	}
	if len(f.Statuses) > 0 {
		statuses := make(bson.A, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, string(st))
		}
		filter["status"] = bson.M{"$in": statuses}
	}
	if f.ScheduledFrom != nil || f.ScheduledTo != nil {
		date := bson.M{}
		if f.ScheduledFrom != nil {
			date["$gte"] = *f.ScheduledFrom
		}
		if f.ScheduledTo != nil {
			date["$lte"] = *f.ScheduledTo
		}
		filter["scheduledDate"] = date
	}
	return filter
}

func notFound(entity, id string) error {
	return errors.Wrap(repository.ErrNotFound, fmt.Sprintf("%s %s", entity, id))
}
