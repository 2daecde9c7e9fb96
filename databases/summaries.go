package databases

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

type summaryDatabase struct {
	db DatabaseHelper
}

// NewSummaryDatabase initializes the enriched case listing over the cases collection
func NewSummaryDatabase(db DatabaseHelper) repository.SummaryRepository {
	return &summaryDatabase{
		db: db,
	}
}

// lookupCount sums the array lengths of field over the documents of from that belong to
// the current case
func lookupCount(from, field, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "let", Value: bson.D{{Key: "caseId", Value: "$_id"}}},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$caseId", "$$caseId"}}}}}}},
			bson.D{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "n", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$" + field, bson.A{}}}}}}}}},
			}}},
		}},
		{Key: "as", Value: as},
	}}}
}

func firstCount(as string) bson.D {
	return bson.D{{Key: "$ifNull", Value: bson.A{
		bson.D{{Key: "$arrayElemAt", Value: bson.A{"$" + as + ".n", 0}}},
		0,
	}}}
}

func summaryPipeline(q repository.CaseQuery) mongo.Pipeline {
	latest := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: scheduleName},
		{Key: "let", Value: bson.D{{Key: "caseId", Value: "$_id"}}},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{"$caseId", "$$caseId"}}}}}}},
			bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
			bson.D{{Key: "$limit", Value: 1}},
			bson.D{{Key: "$project", Value: bson.D{
				{Key: "start", Value: 1},
				{Key: "end", Value: 1},
				{Key: "location", Value: 1},
				{Key: "active", Value: bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$supersededAt", nil}}}, nil}}}},
			}}},
		}},
		{Key: "as", Value: "latestSchedule"},
	}}}

	enrich := mongo.Pipeline{
		latest,
		lookupCount(activityName, "attachments", "activityDocs"),
		lookupCount(resultName, "evidence", "resultDocs"),
		{{Key: "$addFields", Value: bson.D{
			{Key: "latestSchedule", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$latestSchedule", 0}}}},
			{Key: "documentCount", Value: bson.D{{Key: "$add", Value: bson.A{firstCount("activityDocs"), firstCount("resultDocs")}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "activityDocs", Value: 0},
			{Key: "resultDocs", Value: 0},
			{Key: "history", Value: 0},
		}}},
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: caseFilter(q.CaseFilter)}}}
	pipeline = append(pipeline, newMongoPaginate(q.Limit, q.Offset).stages()...)
	return append(pipeline, enrich...)
}

func (c *summaryDatabase) ListSummaries(ctx context.Context, q repository.CaseQuery) ([]models.CaseSummary, error) {
	cur, err := c.db.Collection(caseName).Aggregate(ctx, summaryPipeline(q))
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate case summaries")
	}
	defer cur.Close(ctx)
	summaries := []models.CaseSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, errors.Wrap(err, "failed to decode case summaries")
	}
	return summaries, nil
}
