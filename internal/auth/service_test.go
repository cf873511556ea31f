package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/mail"
	"TaskFlow/internal/store"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, user *User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*User)
	return user, args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*User)
	return user, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return m.Called(ctx, id, set).Error(0)
}

func (m *mockUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUserStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserStore) ClaimAdmin(ctx context.Context, userID primitive.ObjectID, at time.Time) (bool, error) {
	args := m.Called(ctx, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) ReleaseAdmin(ctx context.Context, userID primitive.ObjectID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserStore) FindByResetToken(ctx context.Context, hash string) (*User, error) {
	args := m.Called(ctx, hash)
	user, _ := args.Get(0).(*User)
	return user, args.Error(1)
}

func (m *mockUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error {
	return m.Called(ctx, id, hash, at).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, to []string, subject, template string, data interface{}) error {
	return m.Called(ctx, to, subject, template, data).Error(0)
}

func (m *mockUserStore) List(ctx context.Context, f UserFilter, lo store.ListOptions) (*store.Page[User], error) {
	args := m.Called(ctx, f, lo)
	page, _ := args.Get(0).(*store.Page[User])
	return page, args.Error(1)
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo userStore) *UserService {
	return newTestServiceWithMailer(repo, new(mockMailer))
}

func newTestServiceWithMailer(repo userStore, m resetMailer) *UserService {
	tokens := &TokenManager{key: []byte("test-key"), ttl: time.Hour, now: func() time.Time { return testNow }}
	svc := newUserService(repo, tokens, m, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRegisterUser_FirstUserIsAdmin(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("Count", mock.Anything).Return(int64(0), nil)
	repo.On("ClaimAdmin", mock.Anything, mock.AnythingOfType("primitive.ObjectID"), testNow).Return(true, nil)
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(nil, store.ErrNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

	user, err := newTestService(repo).RegisterUser(context.Background(), RegisterRequest{
		Name: " Ada ", Email: "Ada@Example.com ", Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)
	assert.True(t, CheckPasswordHash("secret-pass", user.PasswordHash))
	repo.AssertExpectations(t)
}

func TestRegisterUser_LostAdminClaim(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("Count", mock.Anything).Return(int64(0), nil)
	repo.On("ClaimAdmin", mock.Anything, mock.Anything, testNow).Return(false, nil)
	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(nil, store.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := newTestService(repo).RegisterUser(context.Background(), RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleMember, user.Role)
	repo.AssertNotCalled(t, "ReleaseAdmin", mock.Anything, mock.Anything)
}

func TestRegisterUser_FailedAdminReleasesClaim(t *testing.T) {
	var claimed primitive.ObjectID
	repo := new(mockUserStore)
	repo.On("Count", mock.Anything).Return(int64(0), nil)
	repo.On("ClaimAdmin", mock.Anything, mock.Anything, testNow).
		Run(func(args mock.Arguments) { claimed = args.Get(1).(primitive.ObjectID) }).
		Return(true, nil)
	repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(&User{}, nil)
	repo.On("ReleaseAdmin", mock.Anything, mock.Anything).Return(nil)

	_, err := newTestService(repo).RegisterUser(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ada@example.com", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertCalled(t, "ReleaseAdmin", mock.Anything, claimed)
}

func TestRegisterUser_LaterUsersAreMembers(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("Count", mock.Anything).Return(int64(3), nil)
	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(nil, store.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user, err := newTestService(repo).RegisterUser(context.Background(), RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleMember, user.Role)
}

func TestRegisterUser_EmailTaken(t *testing.T) {
	repo := new(mockUserStore)
	repo.On("Count", mock.Anything).Return(int64(1), nil)
	repo.On("FindByEmail", mock.Anything, "bob@example.com").Return(&User{}, nil)

	_, err := newTestService(repo).RegisterUser(context.Background(), RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret-pass",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthenticateUser(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)
	user := &User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com", PasswordHash: hash, Role: RoleManager, Active: true}

	t.Run("success", func(t *testing.T) {
		repo := new(mockUserStore)
		repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		repo.On("Update", mock.Anything, user.ID, bson.M{"last_login_at": testNow}).Return(nil)

		svc := newTestService(repo)
		res, err := svc.AuthenticateUser(context.Background(), Credential{Email: "ADA@example.com", Password: "secret-pass"})
		require.NoError(t, err)
		require.NotNil(t, res.User.LastLoginAt)
		assert.Equal(t, testNow, *res.User.LastLoginAt)

		claims, err := svc.tokens.ValidateJWT(res.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID())
		assert.Equal(t, RoleManager, claims.Role)
		repo.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(mockUserStore)
		repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)

		_, err := newTestService(repo).AuthenticateUser(context.Background(), Credential{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(mockUserStore)
		repo.On("FindByEmail", mock.Anything, "who@example.com").Return(nil, store.ErrNotFound)

		_, err := newTestService(repo).AuthenticateUser(context.Background(), Credential{Email: "who@example.com", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		disabled := *user
		disabled.Active = false
		repo := new(mockUserStore)
		repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(&disabled, nil)

		_, err := newTestService(repo).AuthenticateUser(context.Background(), Credential{Email: "ada@example.com", Password: "secret-pass"})
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestUpdateProfile_PasswordChange(t *testing.T) {
	hash, err := HashPassword("old-password")
	require.NoError(t, err)
	id := primitive.NewObjectID()
	user := &User{ID: id, Name: "Ada", PasswordHash: hash}
	newPassword := "new-password"

	t.Run("requires current password", func(t *testing.T) {
		repo := new(mockUserStore)
		repo.On("FindByID", mock.Anything, id).Return(user, nil)

		_, err := newTestService(repo).UpdateProfile(context.Background(), id, UpdateProfileRequest{
			Password: newPassword, CurrentPassword: "wrong",
		})
		assert.ErrorIs(t, err, ErrWrongPassword)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stores new hash", func(t *testing.T) {
		repo := new(mockUserStore)
		repo.On("FindByID", mock.Anything, id).Return(user, nil)
		repo.On("Update", mock.Anything, id, mock.MatchedBy(func(set bson.M) bool {
			h, ok := set["password_hash"].(string)
			return ok && CheckPasswordHash(newPassword, h) && set["name"] == "Ada L"
		})).Return(nil)

		name := " Ada L "
		_, err := newTestService(repo).UpdateProfile(context.Background(), id, UpdateProfileRequest{
			Name: &name, Password: newPassword, CurrentPassword: "old-password",
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestUpdateUser_Department(t *testing.T) {
	id := primitive.NewObjectID()
	dept := primitive.NewObjectID()
	hex := dept.Hex()
	role := RoleManager

	repo := new(mockUserStore)
	repo.On("Update", mock.Anything, id, bson.M{
		"role":       RoleManager,
		"department": &dept,
		"updated_at": testNow,
	}).Return(nil)
	repo.On("FindByID", mock.Anything, id).Return(&User{ID: id}, nil)

	_, err := newTestService(repo).UpdateUser(context.Background(), id, UpdateUserRequest{Role: &role, Department: &hex})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteUser_Self(t *testing.T) {
	repo := new(mockUserStore)
	id := primitive.NewObjectID()

	err := newTestService(repo).DeleteUser(context.Background(), id, id)
	assert.ErrorIs(t, err, ErrSelfDelete)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestForgotPassword(t *testing.T) {
	user := &User{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com", Active: true}

	t.Run("stores hash and mails token", func(t *testing.T) {
		var stored string
		repo := new(mockUserStore)
		mailer := new(mockMailer)
		repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(user, nil)
		repo.On("Update", mock.Anything, user.ID, mock.MatchedBy(func(set bson.M) bool {
			stored, _ = set["reset_token_hash"].(string)
			return set["reset_expires_at"] == testNow.Add(2*time.Hour)
		})).Return(nil)
		mailer.On("Send", mock.Anything, []string{"ada@example.com"}, mock.Anything, mail.TemplatePasswordReset, mock.Anything).Return(nil)

		svc := newTestServiceWithMailer(repo, mailer)
		svc.resetTTL = 2 * time.Hour
		require.NoError(t, svc.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: " ADA@example.com"}))

		data := mailer.Calls[0].Arguments.Get(4).(mail.PasswordResetData)
		token := strings.TrimPrefix(data.Path, "/reset-password?token=")
		require.NotEmpty(t, token)
		assert.NotEqual(t, token, stored)
		assert.Equal(t, HashResetToken(token), stored)
		repo.AssertExpectations(t)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		repo := new(mockUserStore)
		mailer := new(mockMailer)
		repo.On("FindByEmail", mock.Anything, "who@example.com").Return(nil, store.ErrNotFound)

		require.NoError(t, newTestServiceWithMailer(repo, mailer).ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "who@example.com"}))
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("disabled account is silent", func(t *testing.T) {
		disabled := *user
		disabled.Active = false
		repo := new(mockUserStore)
		mailer := new(mockMailer)
		repo.On("FindByEmail", mock.Anything, "ada@example.com").Return(&disabled, nil)

		require.NoError(t, newTestServiceWithMailer(repo, mailer).ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "ada@example.com"}))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	token, hash := NewResetToken()
	valid := testNow.Add(time.Minute)
	expired := testNow.Add(-time.Minute)
	id := primitive.NewObjectID()

	tests := []struct {
		name    string
		user    *User
		findErr error
		wantErr error
	}{
		{"valid token", &User{ID: id, Active: true, ResetTokenHash: hash, ResetExpiresAt: &valid}, nil, nil},
		{"unknown token", nil, store.ErrNotFound, ErrInvalidResetToken},
		{"expired token", &User{ID: id, Active: true, ResetTokenHash: hash, ResetExpiresAt: &expired}, nil, ErrInvalidResetToken},
		{"disabled account", &User{ID: id, ResetTokenHash: hash, ResetExpiresAt: &valid}, nil, ErrAccountDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserStore)
			repo.On("FindByResetToken", mock.Anything, hash).Return(tt.user, tt.findErr)
			repo.On("SetPassword", mock.Anything, id, mock.MatchedBy(func(h string) bool {
				return CheckPasswordHash("brand-new-pass", h)
			}), testNow).Return(nil)

			err := newTestService(repo).ResetPassword(context.Background(), ResetPasswordRequest{Token: token, Password: "brand-new-pass"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "SetPassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
