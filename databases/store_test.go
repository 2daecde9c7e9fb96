package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/diantamela/satgas-ppk/databases"
	"github.com/diantamela/satgas-ppk/databases/mocks"
	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

func sessionFixture() (*mocks.DatabaseHelper, *mocks.SessionHelper) {
	dbHelper := &mocks.DatabaseHelper{}
	client := &mocks.ClientHelper{}
	session := &mocks.SessionHelper{}
	dbHelper.On("Client").Return(client)
	client.On("StartSession").Return(session, nil)
	session.On("EndSession", mock.Anything).Return()
	session.On("WithTransaction", mock.Anything, mock.Anything).Return(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	return dbHelper, session
}

func TestStore_WithTransaction(t *testing.T) {
	dbHelper, session := sessionFixture()
	store := databases.NewStore(dbHelper)

	calls := 0
	err := store.WithTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		// nested calls join the outer session
		return store.WithTransaction(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	session.AssertNumberOfCalls(t, "WithTransaction", 1)
	session.AssertCalled(t, "EndSession", mock.Anything)
}

func TestStore_WithTransactionError(t *testing.T) {
	dbHelper, _ := sessionFixture()
	store := databases.NewStore(dbHelper)

	err := store.WithTransaction(context.Background(), func(context.Context) error {
		return errors.New("mocked-error")
	})
	assert.EqualError(t, err, "mocked-error")
}

func TestStore_EnsureIndexes(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	collectionHelper := &mocks.CollectionHelper{}
	dbHelper.On("Collection", mock.Anything).Return(collectionHelper)
	collectionHelper.On("CreateIndexes", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, databases.NewStore(dbHelper).EnsureIndexes(context.Background()))
	collectionHelper.AssertNumberOfCalls(t, "CreateIndexes", 5)
	dbHelper.AssertCalled(t, "Collection", "cases")
	dbHelper.AssertCalled(t, "Collection", "results")
}

func TestScheduleDatabase_Active(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("schedules")

	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	collectionHelper.On("FindOne", context.Background(), bson.M{"caseId": "c1", "supersededAt": nil}, mock.Anything).Return(sr)

	s, err := databases.NewScheduleDatabase(dbHelper).Active(context.Background(), "c1")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleDatabase_Supersede(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("schedules")
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	collectionHelper.On("UpdateOne", context.Background(),
		bson.M{"_id": "s1", "supersededAt": nil},
		bson.M{"$set": bson.M{"supersededAt": at, "updatedAt": at}}).Return(int64(1), nil)

	require.NoError(t, databases.NewScheduleDatabase(dbHelper).Supersede(context.Background(), "s1", at))
	collectionHelper.AssertExpectations(t)
}

func TestScheduleDatabase_DeleteMissing(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("schedules")
	results := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "results").Return(results)
	results.On("CountDocuments", context.Background(), bson.M{"scheduleId": "s1"}).Return(int64(0), nil)
	collectionHelper.On("DeleteOne", context.Background(), bson.M{"_id": "s1"}).Return(int64(0), nil)

	err := databases.NewScheduleDatabase(dbHelper).Delete(context.Background(), "s1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestScheduleDatabase_DeleteReferenced(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("schedules")
	results := &mocks.CollectionHelper{}
	dbHelper.On("Collection", "results").Return(results)
	results.On("CountDocuments", context.Background(), bson.M{"scheduleId": "s1"}).Return(int64(1), nil)

	err := databases.NewScheduleDatabase(dbHelper).Delete(context.Background(), "s1")
	assert.ErrorIs(t, err, databases.ErrScheduleReferenced)
	collectionHelper.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}

func TestResultDatabase_InsertDuplicate(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("results")
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	collectionHelper.On("InsertOne", context.Background(), mock.Anything).Return(nil, dup)

	err := databases.NewResultDatabase(dbHelper).Insert(context.Background(), &models.Result{ID: "r1", ScheduleID: "s1"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestNotificationDatabase_ListByRecipient(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("notifications")

	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil)
	cursor.On("Close", mock.Anything).Return(nil)
	collectionHelper.On("Find", context.Background(), bson.M{"recipientId": "u1", "read": false}, mock.Anything).Return(cursor, nil)

	list, err := databases.NewNotificationDatabase(dbHelper).ListByRecipient(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestNotificationDatabase_MarkRead(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("notifications")
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	collectionHelper.On("UpdateOne", context.Background(),
		bson.M{"_id": "n1", "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}}).Return(int64(1), nil)
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		n := args.Get(0).(*models.Notification)
		n.ID = "n1"
		n.Read = true
		n.ReadAt = &at
	})
	collectionHelper.On("FindOne", context.Background(), bson.M{"_id": "n1"}).Return(sr)

	n, err := databases.NewNotificationDatabase(dbHelper).MarkRead(context.Background(), "n1", at)
	require.NoError(t, err)
	assert.True(t, n.Read)
	assert.Equal(t, at, *n.ReadAt)
}

func TestSummaryDatabase_ListSummaries(t *testing.T) {
	dbHelper, collectionHelper := collectionFixture("cases")

	count := int64(3)
	cursor := &mocks.CursorHelper{}
	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		out := args.Get(1).(*[]models.CaseSummary)
		*out = append(*out, models.CaseSummary{ID: "c1", DocumentCount: &count})
	})
	cursor.On("Close", mock.Anything).Return(nil)
	collectionHelper.On("Aggregate", context.Background(), mock.AnythingOfType("mongo.Pipeline")).Return(cursor, nil)

	items, err := databases.NewSummaryDatabase(dbHelper).ListSummaries(context.Background(), repository.CaseQuery{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), *items[0].DocumentCount)
}
