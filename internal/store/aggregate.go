package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

type groupCount struct {
	Key   interface{} `bson:"_id"`
	Count int64       `bson:"count"`
}

// CountBy groups the documents matching match by field and counts each
// group. Documents missing the field are counted under "".
func (c *Collection[T]) CountBy(ctx context.Context, match bson.M, field string) (map[string]int64, error) {
	if match == nil {
		match = bson.M{}
	}
	pipeline := bson.A{
		bson.M{"$match": match},
		bson.M{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}
	var rows []groupCount
	if err := c.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		key, _ := r.Key.(string)
		out[key] += r.Count
	}
	return out, nil
}

// Sums returns the totals of the given numeric fields over documents
// matching match.
func (c *Collection[T]) Sums(ctx context.Context, match bson.M, fields ...string) (map[string]float64, error) {
	if match == nil {
		match = bson.M{}
	}
	group := bson.M{"_id": nil}
	for _, f := range fields {
		group[f] = bson.M{"$sum": "$" + f}
	}
	pipeline := bson.A{bson.M{"$match": match}, bson.M{"$group": group}}

	var rows []bson.M
	if err := c.Aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(fields))
	for _, f := range fields {
		out[f] = 0
	}
	if len(rows) == 0 {
		return out, nil
	}
	for _, f := range fields {
		out[f] = toFloat(rows[0][f])
	}
	return out, nil
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
