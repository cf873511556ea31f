package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/config"
)

// ContextKey is where the JWT middleware stores *JWTClaims in echo.Context.
const ContextKey = "user"

type JWTClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"` // checked by the RBAC middleware
	jwt.RegisteredClaims
}

// UserID is the subject of the token.
func (c *JWTClaims) UserID() primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(c.Subject)
	return id
}

func (c *JWTClaims) IsManager() bool {
	return c.Role == RoleAdmin || c.Role == RoleManager
}

type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenManager(cfg *config.AppConfig) *TokenManager {
	return &TokenManager{key: cfg.JWT.Key, ttl: cfg.JWT.TTL, now: time.Now}
}

func (m *TokenManager) GenerateJWT(user *User) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

func (m *TokenManager) ValidateJWT(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID().IsZero() {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// CurrentUser returns the claims stored by the JWT middleware.
func CurrentUser(c echo.Context) (*JWTClaims, error) {
	claims, ok := c.Get(ContextKey).(*JWTClaims)
	if !ok || claims == nil {
		return nil, apperr.Unauthorized("Invalid or missing token")
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NewResetToken returns a random reset token and the hash stored for it.
// Only the hash is persisted.
func NewResetToken() (token, hash string) {
	token = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	return token, HashResetToken(token)
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
