package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	authdomain "github.com/mzotova/threadline/internal/auth/domain"
	authhttp "github.com/mzotova/threadline/internal/auth/http"
	authrepo "github.com/mzotova/threadline/internal/auth/repository"
	"github.com/mzotova/threadline/internal/auth/service"
	"github.com/mzotova/threadline/internal/auth/sessionauth"
	"github.com/mzotova/threadline/internal/common/clock"
	"github.com/mzotova/threadline/internal/common/config"
	"github.com/mzotova/threadline/internal/common/constants"
	"github.com/mzotova/threadline/internal/common/logger"
	userdomain "github.com/mzotova/threadline/internal/user/domain"
	userrepo "github.com/mzotova/threadline/internal/user/repository"
)

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		HTTPPort:           "8080",
		SessionSecret:      testSessionSecret,
		SessionTTL:         24 * time.Hour,
		MaxSessionsPerUser: 3,
		RequestTimeout:     30 * time.Second,
	}
}

// memorySessionRepo backs the end-to-end handler tests so a cookie issued
// by login resolves on later requests.
type memorySessionRepo struct {
	mu     sync.Mutex
	byHash map[string]authdomain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{byHash: make(map[string]authdomain.Session)}
}

func (m *memorySessionRepo) Create(_ context.Context, session authdomain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byHash[session.TokenHash] = session
	return nil
}

func (m *memorySessionRepo) FindByTokenHash(_ context.Context, hash string) (authdomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.byHash[hash]
	if !ok {
		return authdomain.Session{}, authrepo.ErrSessionNotFound
	}
	return session, nil
}

func (m *memorySessionRepo) DeleteByTokenHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byHash[hash]; !ok {
		return authrepo.ErrSessionNotFound
	}
	delete(m.byHash, hash)
	return nil
}

func (m *memorySessionRepo) CountByUserID(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, s := range m.byHash {
		if s.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *memorySessionRepo) DeleteOldestByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldestHash := ""
	var oldest time.Time
	for hash, s := range m.byHash {
		if s.UserID != userID {
			continue
		}
		if oldestHash == "" || s.CreatedAt.Before(oldest) {
			oldestHash = hash
			oldest = s.CreatedAt
		}
	}
	if oldestHash != "" {
		delete(m.byHash, oldestHash)
	}
	return nil
}

func (m *memorySessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// setupAuthHandler wires the handler through the session middleware, with
// an in-memory session repository so a cookie issued by login resolves on
// later requests.
func setupAuthHandler(t *testing.T) (http.Handler, *mockUserRepo) {
	t.Helper()

	users := &mockUserRepo{}
	log, _ := logger.New("", "test", "info")

	svc := service.NewAuthService(
		service.AuthServiceDeps{
			Repo:        users,
			Sessions:    newMemorySessionRepo(),
			Hasher:      &mockHasher{},
			IDGenerator: &mockIDGenerator{},
			Clock:       clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
			Log:         log,
		},
		service.AuthServiceConfig{
			SessionSecret:      testSessionSecret,
			SessionTTL:         24 * time.Hour,
			MaxSessionsPerUser: 3,
		},
	)

	handler := authhttp.NewHandler(svc, testConfig(), log)
	return sessionauth.Middleware(svc, log)(handler), users
}

func postJSON(t *testing.T, handler http.Handler, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getPath(t *testing.T, handler http.Handler, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthHTTP_Register_Success(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	rec := postJSON(t, handler, "/api/register", map[string]string{
		"username": "testuser",
		"password": "password1",
	}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		User    struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Message != "Registration successful" {
		t.Errorf("expected message %q, got %q", "Registration successful", resp.Message)
	}
	if resp.User.Username != "testuser" {
		t.Errorf("expected username testuser, got %s", resp.User.Username)
	}
}

func TestAuthHTTP_Register_DuplicateUsername(t *testing.T) {
	handler, users := setupAuthHandler(t)

	users.createFunc = func(ctx context.Context, user userdomain.User) error {
		return userrepo.ErrUsernameAlreadyExists
	}

	rec := postJSON(t, handler, "/api/register", map[string]string{
		"username": "testuser",
		"password": "password1",
	}, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Message != "Username already exists" {
		t.Errorf("expected message %q, got %q", "Username already exists", env.Message)
	}
	if env.Code != "USERNAME_TAKEN" {
		t.Errorf("expected code USERNAME_TAKEN, got %s", env.Code)
	}
}

func TestAuthHTTP_Register_InvalidJSON(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != "INVALID_JSON" {
		t.Errorf("expected code INVALID_JSON, got %s", env.Code)
	}
}

func TestAuthHTTP_LoginLogoutSessionFlow(t *testing.T) {
	handler, users := setupAuthHandler(t)

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		if username != "testuser" {
			return userdomain.User{}, userrepo.ErrUserNotFound
		}
		return userdomain.User{ID: "user-123", Username: username, PasswordHash: "hashed_password1"}, nil
	}
	users.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, Username: "testuser", PasswordHash: "hashed_password1"}, nil
	}

	rec := postJSON(t, handler, "/api/login", map[string]string{
		"username": "testuser",
		"password": "password1",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected a session cookie on login")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if sessionCookie.Path != "/" {
		t.Errorf("expected cookie path /, got %s", sessionCookie.Path)
	}

	// The cookie resolves the current user.
	rec = getPath(t, handler, "/api/user", []*http.Cookie{sessionCookie})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on /api/user, got %d", rec.Code)
	}
	var userResp struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&userResp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if userResp.Username != "testuser" {
		t.Errorf("expected testuser, got %s", userResp.Username)
	}

	// Logout clears the cookie and revokes the session.
	rec = postJSON(t, handler, "/api/logout", nil, []*http.Cookie{sessionCookie})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on logout, got %d", rec.Code)
	}
	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the session cookie to be cleared")
	}

	rec = getPath(t, handler, "/api/user", []*http.Cookie{sessionCookie})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 after logout, got %d", rec.Code)
	}
}

func TestAuthHTTP_ConcurrentRequestsShareSession(t *testing.T) {
	handler, users := setupAuthHandler(t)

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: "user-123", Username: username, PasswordHash: "hashed_testpass123"}, nil
	}
	users.findByIDFunc = func(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
		return userdomain.User{ID: id, Username: "sessiontest"}, nil
	}

	rec := postJSON(t, handler, "/api/login", map[string]string{
		"username": "sessiontest",
		"password": "testpass123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", rec.Code)
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected a session cookie")
	}

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := getPath(t, handler, "/api/user", []*http.Cookie{sessionCookie})
			if rec.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d", rec.Code)
				return
			}
			var resp struct {
				Username string `json:"username"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Errorf("decode body: %v", err)
				return
			}
			if resp.Username != "sessiontest" {
				t.Errorf("expected sessiontest, got %s", resp.Username)
			}
		}()
	}
	wg.Wait()
}

func TestAuthHTTP_Login_InvalidCredentialsUniform(t *testing.T) {
	handler, users := setupAuthHandler(t)

	users.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}

	recUnknown := postJSON(t, handler, "/api/login", map[string]string{
		"username": "ghost", "password": "password1",
	}, nil)

	if recUnknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recUnknown.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(recUnknown.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != "INVALID_CREDENTIALS" {
		t.Errorf("expected code INVALID_CREDENTIALS, got %s", env.Code)
	}
}

func TestAuthHTTP_CurrentUser_NoSession(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	rec := getPath(t, handler, "/api/user", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != "UNAUTHENTICATED" {
		t.Errorf("expected code UNAUTHENTICATED, got %s", env.Code)
	}
}

func TestAuthHTTP_MethodNotAllowed(t *testing.T) {
	handler, _ := setupAuthHandler(t)

	rec := getPath(t, handler, "/api/register", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
}
