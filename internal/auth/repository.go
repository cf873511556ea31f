package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"TaskFlow/internal/store"
)

const adminClaimKey = "admin_bootstrap"

// adminClaim is the settings document written by the first registration.
// Its fixed _id makes the claim a single unique insert.
type adminClaim struct {
	ID        string             `bson:"_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	ClaimedAt time.Time          `bson:"claimed_at"`
}

type UserRepository struct {
	users    *store.Collection[User]
	settings *store.Collection[adminClaim]
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:    store.NewCollection[User](db, "users"),
		settings: store.NewCollection[adminClaim](db, "settings"),
	}
}

// ClaimAdmin reports whether userID won the bootstrap admin slot. Only one
// caller can ever win.
func (r *UserRepository) ClaimAdmin(ctx context.Context, userID primitive.ObjectID, at time.Time) (bool, error) {
	err := r.settings.Insert(ctx, &adminClaim{ID: adminClaimKey, UserID: userID, ClaimedAt: at})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// ReleaseAdmin gives the slot back when the winning registration failed.
func (r *UserRepository) ReleaseAdmin(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.settings.Raw().DeleteOne(ctx, bson.M{"_id": adminClaimKey, "user_id": userID})
	return errors.Wrap(err, "release admin claim")
}

func (r *UserRepository) Create(ctx context.Context, user *User) error {
	return r.users.Insert(ctx, user)
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return r.users.FindByID(ctx, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.users.FindOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// FindByIDs returns the active users among ids, in no particular order.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	return r.users.FindAll(ctx, bson.M{"_id": bson.M{"$in": ids}, "active": true})
}

func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return r.users.UpdateByID(ctx, id, bson.M{"$set": set})
}

// FindByResetToken looks a user up by the hash of a password reset token.
func (r *UserRepository) FindByResetToken(ctx context.Context, hash string) (*User, error) {
	return r.users.FindOne(ctx, bson.M{"reset_token_hash": hash})
}

// SetPassword stores a new hash and drops any pending reset token.
func (r *UserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	return r.users.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": hash, "updated_at": at},
		"$unset": bson.M{"reset_token_hash": "", "reset_expires_at": ""},
	})
}

func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.users.DeleteByID(ctx, id)
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.users.Count(ctx, bson.M{})
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	return r.users.CountBy(ctx, nil, "role")
}

func (r *UserRepository) List(ctx context.Context, f UserFilter, lo store.ListOptions) (*store.Page[User], error) {
	filter := store.NewFilter().
		Eq("role", f.Role).
		ID("department", f.Department).
		Bool("active", f.Active).
		Search(f.Query, "name", "email")
	return r.users.List(ctx, filter.BSON(), lo)
}

// ListBasic returns id/name/email for the given ids, for embedding in other
// resources.
func (r *UserRepository) ListBasic(ctx context.Context, ids []primitive.ObjectID) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "avatar": 1, "role": 1})
	return r.users.FindAll(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
}

// UnsetDepartment detaches every user from a deleted department.
func (r *UserRepository) UnsetDepartment(ctx context.Context, departmentID primitive.ObjectID) (int64, error) {
	return r.users.UpdateMany(ctx,
		bson.M{"department": departmentID},
		bson.M{"$unset": bson.M{"department": ""}})
}
