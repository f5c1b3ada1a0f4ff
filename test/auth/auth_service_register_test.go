package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mzotova/threadline/internal/auth/service"
	"github.com/mzotova/threadline/internal/common/clock"
	"github.com/mzotova/threadline/internal/common/logger"
	userdomain "github.com/mzotova/threadline/internal/user/domain"
	userrepo "github.com/mzotova/threadline/internal/user/repository"
)

const testSessionSecret = "0123456789abcdef0123456789abcdef"

func setupAuthService(t *testing.T) (*service.AuthService, *mockUserRepo, *mockSessionRepo, *mockHasher, *mockIDGenerator, *clock.MockClock) {
	_ = t
	users := &mockUserRepo{}
	sessions := &mockSessionRepo{}
	hasher := &mockHasher{}
	idGen := &mockIDGenerator{}
	mockClock := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	log, _ := logger.New("", "test", "info")

	svc := service.NewAuthService(
		service.AuthServiceDeps{
			Repo:        users,
			Sessions:    sessions,
			Hasher:      hasher,
			IDGenerator: idGen,
			Clock:       mockClock,
			Log:         log,
		},
		service.AuthServiceConfig{
			SessionSecret:      testSessionSecret,
			SessionTTL:         24 * time.Hour,
			MaxSessionsPerUser: 3,
		},
	)

	return svc, users, sessions, hasher, idGen, mockClock
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, _, hasher, idGen, mockClock := setupAuthService(t)

	idGen.newIDFunc = func() (string, error) {
		return "user-123", nil
	}
	hasher.hashFunc = func(p string) (string, error) {
		return "hashed_password1", nil
	}

	var created userdomain.User
	users.createFunc = func(ctx context.Context, user userdomain.User) error {
		created = user
		return nil
	}

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "testuser",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.Username != "testuser" {
		t.Errorf("expected stored username testuser, got %s", created.Username)
	}
	if created.PasswordHash != "hashed_password1" {
		t.Errorf("expected stored hash hashed_password1, got %s", created.PasswordHash)
	}
	if !created.CreatedAt.Equal(mockClock.Now()) {
		t.Errorf("expected created_at %v, got %v", mockClock.Now(), created.CreatedAt)
	}
	if user.ID != "user-123" {
		t.Errorf("expected user id user-123, got %s", user.ID)
	}
	if user.PasswordHash != "" {
		t.Error("expected password hash to be blanked on the returned user")
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)

	users.createFunc = func(ctx context.Context, user userdomain.User) error {
		return userrepo.ErrUsernameAlreadyExists
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "testuser",
		Password: "password1",
	})
	if !errors.Is(err, service.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if service.ErrUsernameTaken.HTTPStatus() != 400 {
		t.Errorf("expected duplicate username to map to 400, got %d", service.ErrUsernameTaken.HTTPStatus())
	}
	if service.ErrUsernameTaken.Message() != "Username already exists" {
		t.Errorf("unexpected message %q", service.ErrUsernameTaken.Message())
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	svc, users, _, _, _, _ := setupAuthService(t)

	users.createFunc = func(ctx context.Context, user userdomain.User) error {
		t.Error("create must not be called for invalid input")
		return nil
	}

	cases := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"short username", "ab", "password1", service.ErrValidationUsernameLength},
		{"bad username chars", "bad name!", "password1", service.ErrValidationUsernameChars},
		{"leading dash", "-abc", "password1", service.ErrValidationUsernameChars},
		{"short password", "testuser", "pass1", service.ErrValidationPasswordLength},
		{"digits only password", "testuser", "12345678", service.ErrValidationPasswordCharMix},
		{"letters only password", "testuser", "passwords", service.ErrValidationPasswordCharMix},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), service.RegisterInput{
				Username: tc.username,
				Password: tc.password,
			})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}
