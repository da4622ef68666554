// Package service contains the business logic layer: validation, ownership
// rules and orchestration. Services accept primitives and return domain
// errors; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkamau/blogapi/internal/apperror"
	"github.com/mkamau/blogapi/internal/auth"
	"github.com/mkamau/blogapi/internal/model"
	"github.com/mkamau/blogapi/internal/repository"
)

// invalidCredentials is the single message for every login failure. Wrong
// email and wrong password must be indistinguishable to the caller, so no
// probe can learn whether an address is registered.
const invalidCredentials = "invalid email or password"

// AuthService handles registration, login and session lifecycle.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	passwords  *auth.PasswordService
	tokens     *auth.TokenService
	sessionTTL time.Duration
	logger     *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		passwords:  passwords,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// RegisterResult bundles what the register handler needs in one step: the
// created user, the fresh session for the cookie, and the credential string
// returned to the client (which nothing on this server ever validates).
type RegisterResult struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// Register creates an account and logs it in.
//
// An email already in use is a conflict. The pre-check races with concurrent
// registrations by design: if the insert itself hits the uniqueness
// constraint, the repository reports it as unprocessable and no row is
// written.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*RegisterResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("user already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("checking existing user: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	session, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &RegisterResult{User: user, Session: session, Token: token}, nil
}

// Login verifies credentials and starts a session. Every failure path
// returns the same unauthorized message.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, nil, fmt.Errorf("verifying password: %w", err)
	}

	session, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return user, session, nil
}

// Logout revokes the session. Unknown or already-revoked sessions are fine —
// the end state is the same.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.RevokeSession(ctx, sessionID); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// ValidateSession resolves a session cookie value to a user ID. It
// implements auth.SessionValidator for the middleware. Missing, expired and
// revoked sessions all come back unauthorized.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("you need to log in first")
		}
		return "", fmt.Errorf("looking up session: %w", err)
	}
	if !session.Active(time.Now()) {
		return "", apperror.Unauthorized("you need to log in first")
	}
	return session.UserID, nil
}

// GetUserByID returns the user record for a session's user id.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, userID string) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}
