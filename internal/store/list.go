package store

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 100000
)

// DefaultSortFields can be sorted on in every collection.
var DefaultSortFields = []string{"created_at", "updated_at"}

// ListOptions is a page request. Sort is a field name, prefixed with "-" for
// descending order.
type ListOptions struct {
	Page  int
	Limit int
	Sort  string
}

// Page is one page of a list result.
type Page[T any] struct {
	Data  []*T  `json:"data"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

func (o ListOptions) normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Sort == "" {
		o.Sort = "-created_at"
	}
	return o
}

// SortField strips the direction prefix from sort.
func SortField(sort string) string {
	return strings.TrimPrefix(sort, "-")
}

// SortDoc turns "-created_at" into {created_at: -1}.
func SortDoc(sort string) bson.D {
	dir := 1
	if strings.HasPrefix(sort, "-") {
		dir = -1
		sort = sort[1:]
	}
	if sort == "" {
		sort = "created_at"
	}
	return bson.D{{Key: sort, Value: dir}}
}

// skip is computed on a normalized page, so it cannot overflow.
func (o ListOptions) skip() int64 {
	return int64(o.Page-1) * int64(o.Limit)
}

func (o ListOptions) findOptions() *options.FindOptions {
	return options.Find().
		SetSort(SortDoc(o.Sort)).
		SetSkip(o.skip()).
		SetLimit(int64(o.Limit))
}
