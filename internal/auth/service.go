package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/config"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/store"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")
	ErrAccountDisabled    = apperr.Forbidden("Account is disabled")
	ErrEmailTaken         = apperr.Conflict("Email already registered")
	ErrWrongPassword      = apperr.BadRequest("Current password is incorrect")
	ErrSelfDelete         = apperr.BadRequest("You cannot delete your own account")
	ErrInvalidResetToken  = apperr.BadRequest("Reset link is invalid or has expired")
)

const defaultResetTTL = time.Hour

type userStore interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, f UserFilter, lo store.ListOptions) (*store.Page[User], error)
	ClaimAdmin(ctx context.Context, userID primitive.ObjectID, at time.Time) (bool, error)
	ReleaseAdmin(ctx context.Context, userID primitive.ObjectID) error
	FindByResetToken(ctx context.Context, hash string) (*User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string, at time.Time) error
}

type resetMailer interface {
	Send(ctx context.Context, to []string, subject, template string, data interface{}) error
}

type UserService struct {
	repo     userStore
	tokens   *TokenManager
	mailer   resetMailer
	resetTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewUserService(cfg *config.AppConfig, repo *UserRepository, tokens *TokenManager, m *mail.Mailer, logger *zap.Logger) *UserService {
	s := newUserService(repo, tokens, m, logger)
	if cfg.JWT.ResetTTL > 0 {
		s.resetTTL = cfg.JWT.ResetTTL
	}
	return s
}

func newUserService(repo userStore, tokens *TokenManager, m resetMailer, logger *zap.Logger) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		mailer:   m,
		resetTTL: defaultResetTTL,
		logger:   logger.Named("auth"),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates a self-registered account. The very first account
// becomes an admin so a fresh install can be bootstrapped. Concurrent first
// registrations race for a single settings document, so only one wins.
func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	id := primitive.NewObjectID()
	role := RoleMember
	if count == 0 {
		claimed, err := s.repo.ClaimAdmin(ctx, id, s.now())
		if err != nil {
			return nil, err
		}
		if claimed {
			role = RoleAdmin
		}
	}
	user, err := s.create(ctx, id, req.Name, req.Email, req.Password, role, nil, "", "")
	if err != nil && role == RoleAdmin {
		if rerr := s.repo.ReleaseAdmin(ctx, id); rerr != nil {
			s.logger.Error("failed to release admin claim", zap.Error(rerr))
		}
	}
	return user, err
}

func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	dept, err := store.ParseOptionalID(req.Department)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, primitive.NewObjectID(), req.Name, req.Email, req.Password, req.Role, store.IDPtr(dept), req.Position, req.Phone)
}

func (s *UserService) create(ctx context.Context, id primitive.ObjectID, name, email, password, role string, dept *primitive.ObjectID, position, phone string) (*User, error) {
	email = normalizeEmail(email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	now := s.now()
	user := &User{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   dept,
		Position:     position,
		Phone:        phone,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("user created", zap.String("user_id", user.ID.Hex()), zap.String("role", role))
	return user, nil
}

func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (*LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(cred.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	token, err := s.tokens.GenerateJWT(user)
	if err != nil {
		return nil, errors.Wrap(err, "generate token")
	}

	now := s.now()
	if err := s.repo.Update(ctx, user.ID, bson.M{"last_login_at": now}); err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}
	user.LastLoginAt = &now
	return &LoginResponse{Token: token, User: user}, nil
}

// ForgotPassword mails a reset link to an active account. Unknown or
// disabled addresses get the same silent success so accounts can't be probed.
func (s *UserService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Info("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	if !user.Active {
		s.logger.Info("password reset for disabled account", zap.String("user_id", user.ID.Hex()))
		return nil
	}

	token, hash := NewResetToken()
	expires := s.now().Add(s.resetTTL)
	if err := s.repo.Update(ctx, user.ID, bson.M{"reset_token_hash": hash, "reset_expires_at": expires}); err != nil {
		return err
	}
	data := mail.PasswordResetData{
		RecipientName: user.Name,
		ExpiresAt:     mail.FormatTime(expires),
		Path:          "/reset-password?token=" + token,
	}
	if err := s.mailer.Send(ctx, []string{user.Email}, "Reset your password", mail.TemplatePasswordReset, data); err != nil {
		return errors.Wrap(err, "send reset email")
	}
	s.logger.Info("password reset requested", zap.String("user_id", user.ID.Hex()))
	return nil
}

// ResetPassword consumes a reset token. Tokens are single use.
func (s *UserService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.repo.FindByResetToken(ctx, HashResetToken(req.Token))
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	now := s.now()
	if user.ResetExpiresAt == nil || !now.Before(*user.ResetExpiresAt) {
		return ErrInvalidResetToken
	}
	if !user.Active {
		return ErrAccountDisabled
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := s.repo.SetPassword(ctx, user.ID, hash, now); err != nil {
		return err
	}
	s.logger.Info("password reset", zap.String("user_id", user.ID.Hex()))
	return nil
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, f UserFilter, lo store.ListOptions) (*store.Page[User], error) {
	return s.repo.List(ctx, f, lo)
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req UpdateProfileRequest) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	setString(set, "name", req.Name)
	setString(set, "position", req.Position)
	setString(set, "phone", req.Phone)
	setString(set, "avatar", req.Avatar)
	if req.Password != "" {
		if !CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
			return nil, ErrWrongPassword
		}
		hash, err := HashPassword(req.Password)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		set["password_hash"] = hash
	}
	return s.apply(ctx, id, set)
}

func (s *UserService) UpdateUser(ctx context.Context, id primitive.ObjectID, req UpdateUserRequest) (*User, error) {
	set := bson.M{}
	setString(set, "name", req.Name)
	setString(set, "role", req.Role)
	setString(set, "position", req.Position)
	setString(set, "phone", req.Phone)
	setString(set, "avatar", req.Avatar)
	if req.Active != nil {
		set["active"] = *req.Active
	}
	if req.Department != nil {
		dept, err := store.ParseOptionalID(*req.Department)
		if err != nil {
			return nil, err
		}
		set["department"] = store.IDPtr(dept)
	}
	return s.apply(ctx, id, set)
}

func (s *UserService) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*User, error) {
	set["updated_at"] = s.now()
	if err := s.repo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, actor, id primitive.ObjectID) error {
	if actor == id {
		return ErrSelfDelete
	}
	return s.repo.Delete(ctx, id)
}

func setString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = strings.TrimSpace(*v)
	}
}
