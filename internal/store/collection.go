package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is a typed wrapper over a mongo collection holding documents of
// type T.
type Collection[T any] struct {
	coll *mongo.Collection
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{coll: db.Collection(name)}
}

// Raw exposes the underlying collection for queries the helpers don't cover.
func (c *Collection[T]) Raw() *mongo.Collection { return c.coll }

func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return translate(err, "insert "+c.coll.Name())
}

func (c *Collection[T]) InsertMany(ctx context.Context, docs []*T) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	_, err := c.coll.InsertMany(ctx, batch)
	return translate(err, "insert many "+c.coll.Name())
}

func (c *Collection[T]) FindByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return c.FindOne(ctx, bson.M{"_id": id})
}

func (c *Collection[T]) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, translate(err, "find one "+c.coll.Name())
	}
	return &doc, nil
}

// FindAll returns every document matching filter. Callers bound the result
// with opts or a selective filter.
func (c *Collection[T]) FindAll(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err, "find "+c.coll.Name())
	}
	docs := make([]*T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err, "decode "+c.coll.Name())
	}
	return docs, nil
}

// List returns one page of documents matching filter along with the total
// match count.
func (c *Collection[T]) List(ctx context.Context, filter interface{}, lo ListOptions) (*Page[T], error) {
	lo = lo.normalize()
	total, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, translate(err, "count "+c.coll.Name())
	}
	docs, err := c.FindAll(ctx, filter, lo.findOptions())
	if err != nil {
		return nil, err
	}
	return &Page[T]{Data: docs, Total: total, Page: lo.Page, Limit: lo.Limit}, nil
}

func (c *Collection[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return translate(err, "replace "+c.coll.Name())
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateByID applies a raw update document such as {$set: ...} or {$pull: ...}.
func (c *Collection[T]) UpdateByID(ctx context.Context, id primitive.ObjectID, update interface{}) error {
	res, err := c.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return translate(err, "update "+c.coll.Name())
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateOne applies update to the first document matching filter, returning
// ErrNotFound when nothing matched.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter, update interface{}) error {
	res, err := c.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err, "update "+c.coll.Name())
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) UpdateMany(ctx context.Context, filter, update interface{}) (int64, error) {
	res, err := c.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, translate(err, "update many "+c.coll.Name())
	}
	return res.ModifiedCount, nil
}

func (c *Collection[T]) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	return c.DeleteOne(ctx, bson.M{"_id": id})
}

func (c *Collection[T]) DeleteOne(ctx context.Context, filter interface{}) error {
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return translate(err, "delete "+c.coll.Name())
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	res, err := c.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, translate(err, "delete many "+c.coll.Name())
	}
	return res.DeletedCount, nil
}

func (c *Collection[T]) Count(ctx context.Context, filter interface{}) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, filter)
	return n, translate(err, "count "+c.coll.Name())
}

// Aggregate runs pipeline and decodes every result into out, which must be a
// pointer to a slice.
func (c *Collection[T]) Aggregate(ctx context.Context, pipeline interface{}, out interface{}) error {
	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return translate(err, "aggregate "+c.coll.Name())
	}
	return translate(cursor.All(ctx, out), "decode aggregate "+c.coll.Name())
}
