package services

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"time"

	"chatlab/config"
	"chatlab/internal/domain/user"
	"chatlab/internal/repository"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	accessTTL time.Duration
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(cfg.JWTSecret),
		accessTTL: time.Duration(cfg.JWTExpiryHours) * time.Hour,
	}
}

type AccessClaims struct {
	UserID   string `json:"sub"`
	Username string `json:"name"`
	jwt.RegisteredClaims
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func (s *AuthService) Register(ctx context.Context, username, password string) (user.User, string, error) {
	if err := validateCredentials(username, password); err != nil {
		return user.User{}, "", err
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return user.User{}, "", chatlab_errors.ErrAlreadyExists
	} else if !errors.Is(err, chatlab_errors.ErrNotFound) {
		return user.User{}, "", err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return user.User{}, "", err
	}

	u := user.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, &u); err != nil {
		return user.User{}, "", err
	}

	token, err := s.newAccessToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (user.User, string, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, chatlab_errors.ErrNotFound) {
			return user.User{}, "", chatlab_errors.ErrUnauthorized
		}
		return user.User{}, "", err
	}

	if err := comparePassword(u.PasswordHash, password); err != nil {
		return user.User{}, "", chatlab_errors.ErrUnauthorized
	}

	token, err := s.newAccessToken(u)
	if err != nil {
		return user.User{}, "", err
	}
	return u, token, nil
}

// Me returns the profile behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	var claims AccessClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, chatlab_errors.ErrUnauthorized
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return AccessClaims{}, chatlab_errors.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) newAccessToken(u user.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   u.ID.String(),
		Username: u.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func validateCredentials(username, password string) error {
	if len(username) < 3 {
		return chatlab_errors.ErrInvalidInput
	}
	if len(password) < 6 {
		return chatlab_errors.ErrInvalidInput
	}
	if !usernamePattern.MatchString(username) {
		return chatlab_errors.ErrInvalidInput
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HTTPStatus maps service errors to HTTP status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, chatlab_errors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, chatlab_errors.ErrForbidden), errors.Is(err, chatlab_errors.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, chatlab_errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatlab_errors.ErrAlreadyExists), errors.Is(err, chatlab_errors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, chatlab_errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, chatlab_errors.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, chatlab_errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, chatlab_errors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type ctxKey string

const userIDKey ctxKey = "auth_user_id"
const usernameKey ctxKey = "auth_username"

// WithUserContext attaches the authenticated user to the request context.
func WithUserContext(ctx context.Context, userID uuid.UUID, username string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, usernameKey, username)
}

// UserIDFromContext returns the authenticated user id, if present.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// UsernameFromContext returns the authenticated username, if present.
func UsernameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(usernameKey).(string)
	return name, ok
}
