package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tagmark/tagmark/internal/auth"
	"github.com/tagmark/tagmark/internal/metrics"
	"github.com/tagmark/tagmark/internal/model"
	"github.com/tagmark/tagmark/internal/repository"
)

type stubUserStore struct {
	users     map[string]*model.User
	createErr error
	getErr    error
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[string]*model.User)}
}

func (s *stubUserStore) CreateUser(_ context.Context, user *model.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.users[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	s.users[user.Username] = user
	return nil
}

func (s *stubUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	user, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type stubTokenIssuer struct {
	token string
	err   error
	ttl   time.Duration
}

func (s *stubTokenIssuer) Issue(subject string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.token != "" {
		return s.token, nil
	}
	return "token-for-" + subject, nil
}

func (s *stubTokenIssuer) TTL() time.Duration {
	if s.ttl == 0 {
		return 30 * time.Minute
	}
	return s.ttl
}

func newTestAccountService(t *testing.T, store *stubUserStore, issuer *stubTokenIssuer) *AccountService {
	t.Helper()
	svc, err := NewAccountService(store, issuer, metrics.NewNoop())
	if err != nil {
		t.Fatalf("NewAccountService() error = %v", err)
	}
	return svc
}

func TestAccountService_Register(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	svc := newTestAccountService(t, store, &stubTokenIssuer{})

	user, err := svc.Register(context.Background(), "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.ID == "" {
		t.Error("expected non-empty user ID")
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want %q", user.Username, "alice")
	}
	if user.PasswordHash == "" {
		t.Error("expected stored password hash")
	}
	if strings.Contains(user.PasswordHash, "correct horse battery") {
		t.Error("password hash contains the plaintext password")
	}
	if !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Errorf("PasswordHash = %q, want argon2id PHC format", user.PasswordHash)
	}

	match, err := auth.VerifyPassword("correct horse battery", user.PasswordHash)
	if err != nil || !match {
		t.Errorf("stored hash does not verify: match=%v err=%v", match, err)
	}
}

func TestAccountService_RegisterValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"username too short", "ab", "longenough1", ErrInvalidUsername},
		{"username with spaces", "a lice", "longenough1", ErrInvalidUsername},
		{"username with slash", "ali/ce", "longenough1", ErrInvalidUsername},
		{"username too long", strings.Repeat("a", 65), "longenough1", ErrInvalidUsername},
		{"empty username", "", "longenough1", ErrInvalidUsername},
		{"password too short", "alice", "short", ErrInvalidPassword},
		{"password too long", "alice", strings.Repeat("p", 129), ErrInvalidPassword},
		{"empty password", "alice", "", ErrInvalidPassword},
	}

	svc := newTestAccountService(t, newStubUserStore(), &stubTokenIssuer{})

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountService_RegisterDuplicate(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	svc := newTestAccountService(t, store, &stubTokenIssuer{})

	if _, err := svc.Register(context.Background(), "alice", "longenough1"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "alice", "different-pass1")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Register() error = %v, want ErrUsernameTaken", err)
	}
}

func TestAccountService_Login(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	issuer := &stubTokenIssuer{ttl: 30 * time.Minute}
	svc := newTestAccountService(t, store, issuer)

	if _, err := svc.Register(context.Background(), "alice", "longenough1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "alice", "longenough1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if result.AccessToken != "token-for-alice" {
		t.Errorf("AccessToken = %q, want %q", result.AccessToken, "token-for-alice")
	}
	if result.TokenType != "bearer" {
		t.Errorf("TokenType = %q, want %q", result.TokenType, "bearer")
	}
	if result.ExpiresIn != 1800 {
		t.Errorf("ExpiresIn = %d, want 1800", result.ExpiresIn)
	}
}

func TestAccountService_LoginFailuresAreUniform(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	svc := newTestAccountService(t, store, &stubTokenIssuer{})

	if _, err := svc.Register(context.Background(), "alice", "longenough1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown username and wrong password must return the same error
	// value so the handler layer cannot distinguish them.
	_, unknownErr := svc.Login(context.Background(), "nosuchuser", "longenough1")
	_, wrongErr := svc.Login(context.Background(), "alice", "wrongpassword")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAccountService_LoginCorruptHash(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	store.users["mallory"] = &model.User{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Username:     "mallory",
		PasswordHash: "not-a-valid-hash",
		CreatedAt:    time.Now().UTC(),
	}
	svc := newTestAccountService(t, store, &stubTokenIssuer{})

	_, err := svc.Login(context.Background(), "mallory", "whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAccountService_LoginTokenIssueError(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	issuer := &stubTokenIssuer{err: errors.New("signing failed")}
	svc := newTestAccountService(t, store, issuer)

	if _, err := svc.Register(context.Background(), "alice", "longenough1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := svc.Login(context.Background(), "alice", "longenough1")
	if err == nil {
		t.Fatal("expected error when token issuing fails")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Error("internal failure must not masquerade as bad credentials")
	}
}

func TestAccountService_Metrics(t *testing.T) {
	t.Parallel()

	store := newStubUserStore()
	recorder := metrics.NewInMemory()
	svc, err := NewAccountService(store, &stubTokenIssuer{}, recorder)
	if err != nil {
		t.Fatalf("NewAccountService() error = %v", err)
	}

	ctx := context.Background()
	if _, err := svc.Register(ctx, "alice", "longenough1"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Login(ctx, "alice", "longenough1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	_, _ = svc.Login(ctx, "alice", "wrongpassword")

	snap := recorder.Snapshot()
	if snap.UsersRegistered != 1 {
		t.Errorf("UsersRegistered = %d, want 1", snap.UsersRegistered)
	}
	if snap.LoginsSucceeded != 1 {
		t.Errorf("LoginsSucceeded = %d, want 1", snap.LoginsSucceeded)
	}
	if snap.LoginsFailed != 1 {
		t.Errorf("LoginsFailed = %d, want 1", snap.LoginsFailed)
	}
}
