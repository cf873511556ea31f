package store

import "go.mongodb.org/mongo-driver/bson/primitive"

// IDPtr returns nil for the zero id so optional references stay out of both
// the stored document and the JSON response.
func IDPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

// IDValue dereferences an optional reference.
func IDValue(id *primitive.ObjectID) primitive.ObjectID {
	if id == nil {
		return primitive.NilObjectID
	}
	return *id
}
