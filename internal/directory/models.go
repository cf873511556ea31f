package directory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"TaskFlow/internal/project"
)

const (
	ClientActive   = "active"
	ClientInactive = "inactive"
)

var (
	DepartmentSortFields = []string{"name"}
	ClientSortFields     = []string{"name", "company", "status", "industry"}
	ContactSortFields    = []string{"name", "company", "email"}
)

type Department struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Head        *primitive.ObjectID `bson:"head,omitempty" json:"head,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

type Client struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Company   string             `bson:"company,omitempty" json:"company,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address   string             `bson:"address,omitempty" json:"address,omitempty"`
	Industry  string             `bson:"industry,omitempty" json:"industry,omitempty"`
	Status    string             `bson:"status" json:"status"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// ClientDetail is a client with its projects and contacts attached.
type ClientDetail struct {
	*Client
	Projects []*project.Project `json:"projects"`
	Contacts []*Contact         `json:"contacts"`
}

type Contact struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name      string              `bson:"name" json:"name"`
	Email     string              `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Position  string              `bson:"position,omitempty" json:"position,omitempty"`
	Company   string              `bson:"company,omitempty" json:"company,omitempty"`
	Client    *primitive.ObjectID `bson:"client,omitempty" json:"client,omitempty"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

type DepartmentRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Head        string `json:"head" validate:"omitempty,objectid"`
}

type ClientRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Company  string `json:"company" validate:"max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=500"`
	Industry string `json:"industry" validate:"max=100"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
	Notes    string `json:"notes" validate:"max=5000"`
}

type ContactRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Position string `json:"position" validate:"max=100"`
	Company  string `json:"company" validate:"max=200"`
	Client   string `json:"client" validate:"omitempty,objectid"`
	Notes    string `json:"notes" validate:"max=5000"`
}

type ClientFilter struct {
	Status string
	Query  string
}

type ContactFilter struct {
	Client primitive.ObjectID
	Query  string
}
