package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"autofix/internal/database"
	"autofix/internal/domain"
	"autofix/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps the login path doing a bcrypt comparison even for
// unknown usernames, so response timing does not leak which part of
// the credential failed. Hash of an unusable random value.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService verifies admin credentials and manages sessions.
type AuthService struct {
	repo     domain.Repository
	sessions domain.SessionRepository
	logger   *zerolog.Logger
}

func NewAuthService(repo domain.Repository, sessions domain.SessionRepository, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// Login checks the credential against the stored bcrypt hash and, on
// success, opens a server-side session. Unknown username and wrong
// password produce the same error.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrUnauthorized
	}

	admin, err := a.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		AdminID:   admin.ID,
		Username:  admin.Username,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.sessions.SetSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	a.logger.Info().Str("username", admin.Username).Msg("admin logged in")
	return session, nil
}

func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.DeleteSession(ctx, token)
}

// Authenticate resolves a session token; missing or expired sessions
// come back as ErrUnauthorized.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	session, err := a.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrUnauthorized
	}
	return session, nil
}

// HashPassword is the single place admin credentials get hashed, used
// by seeding.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
