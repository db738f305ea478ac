package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/domain/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles account registration and token-based sessions.
// Users live in the user store; sessions are opaque tokens held in the
// session store with a TTL.
type AuthService struct {
	users      repository.UserStore
	sessions   repository.SessionStore
	sessionTTL time.Duration
}

func NewAuthService(users repository.UserStore, sessions repository.SessionStore, sessionTTL time.Duration) *AuthService {
	return &AuthService{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// Register creates an account and logs it straight in.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (*entity.User, string, error) {
	if a.users == nil {
		return nil, "", entity.ErrStoreNotConfigured
	}
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("username, email and password required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := a.users.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		return nil, "", err
	}

	token, err := a.newSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks credentials against the stored hash and issues a session.
func (a *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*entity.User, string, error) {
	if a.users == nil {
		return nil, "", entity.ErrStoreNotConfigured
	}

	user, err := a.users.FindByUsernameOrEmail(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", entity.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	token, err := a.newSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout drops the session; a missing token is not an error.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, token)
}

// Me resolves a session token to its user, or nil when the token is
// absent, expired, or points at a deleted account (the stale session is
// cleaned up in that case).
func (a *AuthService) Me(ctx context.Context, token string) (*entity.User, error) {
	if a.users == nil {
		return nil, entity.ErrStoreNotConfigured
	}
	if token == "" {
		return nil, nil
	}

	userID, err := a.sessions.Get(ctx, token)
	if err == entity.ErrSessionNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = a.sessions.Delete(ctx, token)
		return nil, nil
	}
	return user, nil
}

func (a *AuthService) newSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := a.sessions.Create(ctx, token, userID, a.sessionTTL); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}
