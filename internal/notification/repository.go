package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"TaskFlow/internal/store"
)

// NotificationRepository handles DB operations for notifications. Every
// lookup is scoped to the recipient so users only ever see their own.
type NotificationRepository struct {
	notifications *store.Collection[Notification]
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{notifications: store.NewCollection[Notification](db, "notifications")}
}

func (r *NotificationRepository) CreateMany(ctx context.Context, ns []*Notification) error {
	return r.notifications.InsertMany(ctx, ns)
}

// List returns the recipient's notifications, newest first. unread=true
// limits the page to unread ones.
func (r *NotificationRepository) List(ctx context.Context, recipient primitive.ObjectID, unread *bool, lo store.ListOptions) (*store.Page[Notification], error) {
	filter := bson.M{"recipient": recipient}
	if unread != nil {
		filter["read"] = !*unread
	}
	return r.notifications.List(ctx, filter, lo)
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return r.notifications.Count(ctx, bson.M{"recipient": recipient, "read": false})
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipient, id primitive.ObjectID, at time.Time) error {
	return r.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipient},
		bson.M{"$set": bson.M{"read": true, "read_at": at, "updated_at": at}})
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	return r.notifications.UpdateMany(ctx,
		bson.M{"recipient": recipient, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": at, "updated_at": at}})
}

func (r *NotificationRepository) Delete(ctx context.Context, recipient, id primitive.ObjectID) error {
	return r.notifications.DeleteOne(ctx, bson.M{"_id": id, "recipient": recipient})
}

// DeleteForRef removes notifications about a deleted document.
func (r *NotificationRepository) DeleteForRef(ctx context.Context, refType string, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.notifications.DeleteMany(ctx, bson.M{"ref_type": refType, "ref_id": bson.M{"$in": ids}})
}
