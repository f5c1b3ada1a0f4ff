package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	authdomain "github.com/mzotova/threadline/internal/auth/domain"
	"github.com/mzotova/threadline/internal/auth/service"
	userdomain "github.com/mzotova/threadline/internal/user/domain"
	userrepo "github.com/mzotova/threadline/internal/user/repository"
)

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, sessions, hasher, _, mockClock := setupAuthService(t)

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: "user-123", Username: username, PasswordHash: "stored-hash"}, nil
	}
	hasher.compareFunc = func(hash, password string) error {
		if hash != "stored-hash" || password != "password1" {
			t.Errorf("unexpected compare args hash=%s password=%s", hash, password)
		}
		return nil
	}

	var stored authdomain.Session
	sessions.createFunc = func(ctx context.Context, session authdomain.Session) error {
		stored = session
		return nil
	}

	session, user, err := svc.Login(context.Background(), service.LoginInput{
		Username: "testuser",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if session.RawToken == "" {
		t.Fatal("expected a raw token on the issued session")
	}
	if stored.RawToken != "" {
		t.Error("raw token must not be passed to the repository")
	}
	if stored.TokenHash == "" || stored.TokenHash == session.RawToken {
		t.Error("repository must receive a hash, not the raw token")
	}
	if !stored.ExpiresAt.Equal(mockClock.Now().Add(24 * time.Hour)) {
		t.Errorf("unexpected expiry %v", stored.ExpiresAt)
	}
	if user.Username != "testuser" {
		t.Errorf("expected user testuser, got %s", user.Username)
	}
	if user.PasswordHash != "" {
		t.Error("expected password hash to be blanked on the returned user")
	}
}

func TestAuthService_Login_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	svc, users, _, hasher, _, _ := setupAuthService(t)

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}

	_, _, errUnknown := svc.Login(context.Background(), service.LoginInput{
		Username: "ghost",
		Password: "password1",
	})

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: "user-123", Username: username, PasswordHash: "stored-hash"}, nil
	}
	hasher.compareFunc = func(hash, password string) error {
		return errors.New("mismatch")
	}

	_, _, errWrongPassword := svc.Login(context.Background(), service.LoginInput{
		Username: "testuser",
		Password: "wrongpass1",
	})

	if !errors.Is(errUnknown, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", errUnknown)
	}
	if !errors.Is(errWrongPassword, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPassword)
	}
	if errUnknown.Error() != errWrongPassword.Error() {
		t.Error("both failure modes must be indistinguishable to the caller")
	}
	if service.ErrInvalidCredentials.HTTPStatus() != 401 {
		t.Errorf("expected 401, got %d", service.ErrInvalidCredentials.HTTPStatus())
	}
}

func TestAuthService_Login_EvictsOldestSessionAtCap(t *testing.T) {
	svc, users, sessions, _, _, _ := setupAuthService(t)

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: "user-123", Username: username, PasswordHash: "stored-hash"}, nil
	}
	sessions.countByUserIDFunc = func(ctx context.Context, userID string) (int, error) {
		return 3, nil
	}

	evicted := false
	sessions.deleteOldestByUserIDFunc = func(ctx context.Context, userID string) error {
		if userID != "user-123" {
			t.Errorf("expected eviction for user-123, got %s", userID)
		}
		evicted = true
		return nil
	}

	_, _, err := svc.Login(context.Background(), service.LoginInput{
		Username: "testuser",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !evicted {
		t.Error("expected the oldest session to be evicted at the cap")
	}
}
