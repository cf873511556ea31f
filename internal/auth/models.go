package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

var Roles = []string{RoleAdmin, RoleManager, RoleMember}

// UserSortFields are the fields GET /api/users may sort on.
var UserSortFields = []string{"name", "email", "role", "last_login_at"}

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	Role         string              `bson:"role" json:"role"`
	Department   *primitive.ObjectID `bson:"department,omitempty" json:"department,omitempty"`
	Position     string              `bson:"position,omitempty" json:"position,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Avatar       string              `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Active       bool                `bson:"active" json:"active"`
	LastLoginAt  *time.Time          `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	ResetTokenHash string     `bson:"reset_token_hash,omitempty" json:"-"`
	ResetExpiresAt *time.Time `bson:"reset_expires_at,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserFilter narrows GET /api/users.
type UserFilter struct {
	Role       string
	Department primitive.ObjectID
	Active     *bool
	Query      string
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type Credential struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type CreateUserRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Role       string `json:"role" validate:"required,role"`
	Department string `json:"department" validate:"omitempty,objectid"`
	Position   string `json:"position" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=30"`
}

type UpdateUserRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Role       *string `json:"role" validate:"omitempty,role"`
	Department *string `json:"department" validate:"omitempty,objectid"`
	Position   *string `json:"position" validate:"omitempty,max=100"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Avatar     *string `json:"avatar" validate:"omitempty,max=500"`
	Active     *bool   `json:"active"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=100"`
	Position        *string `json:"position" validate:"omitempty,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=30"`
	Avatar          *string `json:"avatar" validate:"omitempty,max=500"`
	Password        string  `json:"password" validate:"omitempty,min=8,max=72"`
	CurrentPassword string  `json:"current_password" validate:"required_with=Password"`
}
