package store

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Filter builds a bson.M query from optional criteria, skipping empty values.
type Filter bson.M

func NewFilter() Filter { return Filter{} }

func (f Filter) Eq(field, value string) Filter {
	if value != "" {
		f[field] = value
	}
	return f
}

func (f Filter) ID(field string, id primitive.ObjectID) Filter {
	if !id.IsZero() {
		f[field] = id
	}
	return f
}

func (f Filter) Bool(field string, value *bool) Filter {
	if value != nil {
		f[field] = *value
	}
	return f
}

// Search matches q case-insensitively against any of fields.
func (f Filter) Search(q string, fields ...string) Filter {
	if q == "" || len(fields) == 0 {
		return f
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.M{field: pattern})
	}
	f["$or"] = or
	return f
}

// Range restricts field to [from, to]. Zero bounds are open.
func (f Filter) Range(field string, from, to time.Time) Filter {
	cond := bson.M{}
	if !from.IsZero() {
		cond["$gte"] = from
	}
	if !to.IsZero() {
		cond["$lte"] = to
	}
	if len(cond) > 0 {
		f[field] = cond
	}
	return f
}

func (f Filter) BSON() bson.M { return bson.M(f) }
