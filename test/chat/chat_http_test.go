package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mzotova/threadline/internal/auth/sessionauth"
	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	chathttp "github.com/mzotova/threadline/internal/chat/http"
	"github.com/mzotova/threadline/internal/common/config"
	"github.com/mzotova/threadline/internal/common/logger"
)

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupChatHandler(t *testing.T) (http.Handler, *mockThreadRepo, *mockGenerator) {
	t.Helper()

	svc, repo, gen, _, _ := setupChatService(t)
	log, _ := logger.New("", "test", "info")
	cfg := config.AppConfig{
		RequestTimeout: 30 * time.Second,
		SubmitTimeout:  60 * time.Second,
	}

	return chathttp.NewHandler(svc, cfg, log), repo, gen
}

func authedRequest(method, path string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	ctx := sessionauth.WithPrincipal(context.Background(), sessionauth.Principal{
		UserID:   "user-123",
		Username: "testuser",
	})
	return req.WithContext(ctx)
}

func TestChatHTTP_Submit_NewThread(t *testing.T) {
	handler, _, _ := setupChatHandler(t)

	body, _ := json.Marshal(map[string]any{"thread_id": 0, "content": "hello"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/messages", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ThreadID int64 `json:"thread_id"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.ThreadID != 1 {
		t.Errorf("expected thread id 1, got %d", resp.ThreadID)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Role != "user" || resp.Messages[1].Role != "assistant" {
		t.Errorf("unexpected roles %s/%s", resp.Messages[0].Role, resp.Messages[1].Role)
	}
}

func TestChatHTTP_Submit_EmptyContent(t *testing.T) {
	handler, _, _ := setupChatHandler(t)

	body, _ := json.Marshal(map[string]any{"content": "   "})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/messages", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != "EMPTY_MESSAGE" {
		t.Errorf("expected code EMPTY_MESSAGE, got %s", env.Code)
	}
}

func TestChatHTTP_Submit_Unauthenticated(t *testing.T) {
	handler, _, _ := setupChatHandler(t)

	body, _ := json.Marshal(map[string]any{"content": "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/messages", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestChatHTTP_ListThreads(t *testing.T) {
	handler, repo, _ := setupChatHandler(t)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.listThreadsFunc = func(ctx context.Context, userID string) ([]chatdomain.Thread, error) {
		if userID != "user-123" {
			t.Errorf("expected user-123, got %s", userID)
		}
		return []chatdomain.Thread{
			{ID: 2, UserID: userID, Title: "newer", CreatedAt: now},
			{ID: 1, UserID: userID, Title: "older", CreatedAt: now.Add(-time.Hour)},
		}, nil
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/threads", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Threads []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"threads"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Threads) != 2 || resp.Threads[0].Title != "newer" {
		t.Errorf("unexpected threads %+v", resp.Threads)
	}
}

func TestChatHTTP_ThreadMessages(t *testing.T) {
	handler, repo, _ := setupChatHandler(t)

	repo.findThreadFunc = func(ctx context.Context, userID string, threadID int64) (chatdomain.Thread, error) {
		return chatdomain.Thread{ID: threadID, UserID: userID}, nil
	}
	repo.listMessagesFunc = func(ctx context.Context, threadID int64) ([]chatdomain.Message, error) {
		return []chatdomain.Message{
			{ID: 1, ThreadID: threadID, Role: chatdomain.RoleUser, Content: "question"},
			{ID: 2, ThreadID: threadID, Role: chatdomain.RoleAssistant, Content: "answer"},
		}, nil
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/threads/5/messages", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ThreadID int64 `json:"thread_id"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.ThreadID != 5 || len(resp.Messages) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestChatHTTP_ThreadMessages_NotFound(t *testing.T) {
	handler, _, _ := setupChatHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/threads/99/messages", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	var env errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != "THREAD_NOT_FOUND" {
		t.Errorf("expected code THREAD_NOT_FOUND, got %s", env.Code)
	}
}

func TestChatHTTP_ThreadMessages_BadPath(t *testing.T) {
	handler, _, _ := setupChatHandler(t)

	for _, path := range []string{
		"/api/threads/abc/messages",
		"/api/threads/5",
		"/api/threads/5/other",
		"/api/threads/-1/messages",
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404 for %s, got %d", path, rec.Code)
		}
	}
}
