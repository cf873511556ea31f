package comment

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"TaskFlow/internal/store"
)

type CommentRepository struct {
	comments *store.Collection[Comment]
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{comments: store.NewCollection[Comment](db, "comments")}
}

func (r *CommentRepository) Create(ctx context.Context, c *Comment) error {
	return r.comments.Insert(ctx, c)
}

func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Comment, error) {
	return r.comments.FindByID(ctx, id)
}

func (r *CommentRepository) Replace(ctx context.Context, c *Comment) error {
	return r.comments.Replace(ctx, c.ID, c)
}

func (r *CommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.comments.DeleteByID(ctx, id)
}

// List returns a thread oldest first.
func (r *CommentRepository) List(ctx context.Context, f Filter) ([]*Comment, error) {
	filter := store.NewFilter().ID("task", f.Task).ID("project", f.Project)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	return r.comments.FindAll(ctx, filter.BSON(), opts)
}

func (r *CommentRepository) DeleteForTasks(ctx context.Context, taskIDs []primitive.ObjectID) (int64, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}
	return r.comments.DeleteMany(ctx, bson.M{"task": bson.M{"$in": taskIDs}})
}

func (r *CommentRepository) DeleteForProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return r.comments.DeleteMany(ctx, bson.M{"project": projectID})
}
