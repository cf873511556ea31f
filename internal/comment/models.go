package comment

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxContentLength = 5000

// Comment belongs to exactly one of a task or a project.
type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Content   string               `bson:"content" json:"content"`
	Author    primitive.ObjectID   `bson:"author" json:"author"`
	Task      *primitive.ObjectID  `bson:"task,omitempty" json:"task,omitempty"`
	Project   *primitive.ObjectID  `bson:"project,omitempty" json:"project,omitempty"`
	Mentions  []primitive.ObjectID `bson:"mentions" json:"mentions"`
	Edited    bool                 `bson:"edited" json:"edited"`
	CreatedAt time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updated_at"`
}

type CreateCommentRequest struct {
	Content  string   `json:"content" validate:"required,max=5000"`
	Task     string   `json:"task" validate:"omitempty,objectid"`
	Project  string   `json:"project" validate:"omitempty,objectid"`
	Mentions []string `json:"mentions" validate:"omitempty,objectid"`
}

type UpdateCommentRequest struct {
	Content  string    `json:"content" validate:"required,max=5000"`
	Mentions *[]string `json:"mentions" validate:"omitempty,objectid"`
}

// Filter selects the comments of one task or one project.
type Filter struct {
	Task    primitive.ObjectID
	Project primitive.ObjectID
}
