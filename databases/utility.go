package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newestFirst orders documents by creation time, ties broken by id
var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

type mongoPaginate struct {
	limit  int64
	offset int64
}

func newMongoPaginate(limit, offset int) *mongoPaginate {
	return &mongoPaginate{
		limit:  int64(limit),
		offset: int64(offset),
	}
}

func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	return options.Find().SetSort(newestFirst).SetSkip(mp.offset).SetLimit(mp.limit)
}

// stages renders the same page as aggregation stages
func (mp *mongoPaginate) stages() []bson.D {
	return []bson.D{
		{{Key: "$sort", Value: newestFirst}},
		{{Key: "$skip", Value: mp.offset}},
		{{Key: "$limit", Value: mp.limit}},
	}
}
