// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tagmark/tagmark/internal/auth"
	"github.com/tagmark/tagmark/internal/metrics"
	"github.com/tagmark/tagmark/internal/model"
	"github.com/tagmark/tagmark/internal/repository"
)

// Account service errors.
var (
	ErrInvalidUsername = errors.New("invalid username format")
	ErrInvalidPassword = errors.New("password does not meet requirements")
	ErrUsernameTaken   = errors.New("username already taken")
	// ErrInvalidCredentials covers every login failure: unknown username,
	// wrong password, corrupt stored hash. One error, by design.
	ErrInvalidCredentials = errors.New("incorrect username or password")
)

// Username: 3-64 chars, letters, digits, underscore, dot, hyphen.
// Matching is case-sensitive, as is the uniqueness constraint.
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// TokenIssuer issues signed tokens for authenticated subjects.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	TTL() time.Duration
}

// UserStore is the persistence surface the account service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// AccountService handles registration and login.
type AccountService struct {
	users     UserStore
	tokens    TokenIssuer
	metrics   metrics.Recorder
	dummyHash string
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore, tokens TokenIssuer, recorder metrics.Recorder) (*AccountService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	// Hash an arbitrary value once so login can burn the same work on
	// unknown usernames as on known ones. Without this, a fast "user
	// not found" path would let callers enumerate usernames by timing.
	dummyHash, err := auth.HashPassword(ulid.Make().String())
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AccountService{
		users:     users,
		tokens:    tokens,
		metrics:   recorder,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new user with a hashed password.
// Returns ErrUsernameTaken if the username exists.
func (s *AccountService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if !usernameRegex.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return nil, ErrInvalidPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// LoginResult carries the issued token.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64
}

// Login verifies credentials and issues a bearer token.
// Unknown username and wrong password are indistinguishable: both
// return ErrInvalidCredentials after comparable work.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		// Burn a verification against the dummy hash so the miss costs
		// the same as a real comparison.
		_, _ = auth.VerifyPassword(password, s.dummyHash)
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		// A corrupt stored hash and a wrong password collapse into the
		// same failure; internals never leak to the caller.
		s.metrics.IncLoginFailed()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSucceeded()
	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}
