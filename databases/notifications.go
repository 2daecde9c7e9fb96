package databases

// go generate: mockery --name NotificationDatabase

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

const notificationName = "notifications"

type notificationDatabase struct {
	db DatabaseHelper
}

// NewNotificationDatabase initializes a new instance of notification database with the provided db connection
func NewNotificationDatabase(db DatabaseHelper) repository.NotificationRepository {
	return &notificationDatabase{
		db: db,
	}
}

func (c *notificationDatabase) Insert(ctx context.Context, n *models.Notification) error {
	_, err := c.db.Collection(notificationName).InsertOne(ctx, n)
	return errors.Wrap(err, "failed to insert notification")
}

func (c *notificationDatabase) Get(ctx context.Context, id string) (*models.Notification, error) {
	n := &models.Notification{}
	err := c.db.Collection(notificationName).FindOne(ctx, bson.M{"_id": id}).Decode(n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("notification", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get notification")
	}
	return n, nil
}

func (c *notificationDatabase) MarkRead(ctx context.Context, id string, at time.Time) (*models.Notification, error) {
	_, err := c.db.Collection(notificationName).UpdateOne(ctx,
		bson.M{"_id": id, "read": false},
		bson.M{"$set": bson.M{"read": true, "readAt": at}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to mark notification read")
	}
	return c.Get(ctx, id)
}

func (c *notificationDatabase) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Notification, error) {
	cur, err := c.db.Collection(notificationName).Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	defer cur.Close(ctx)
	notifications := []models.Notification{}
	if err := cur.All(ctx, &notifications); err != nil {
		return nil, errors.Wrap(err, "failed to decode notifications")
	}
	return notifications, nil
}

func (c *notificationDatabase) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	filter := bson.M{"recipientId": recipientID}
	if unreadOnly {
		filter["read"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return c.find(ctx, filter, opts)
}

func (c *notificationDatabase) ListUndelivered(ctx context.Context, limit int) ([]models.Notification, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	return c.find(ctx, bson.M{"deliveredAt": nil}, opts)
}

func (c *notificationDatabase) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	matched, err := c.db.Collection(notificationName).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"deliveredAt": at}})
	if err != nil {
		return errors.Wrap(err, "failed to mark notification delivered")
	}
	if matched == 0 {
		return notFound("notification", id)
	}
	return nil
}
