package chat

import (
	"context"
	"sync"
	"time"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	chatrepo "github.com/mzotova/threadline/internal/chat/repository"
)

type mockThreadRepo struct {
	createThreadFunc  func(ctx context.Context, userID, title string, createdAt time.Time) (chatdomain.Thread, error)
	findThreadFunc    func(ctx context.Context, userID string, threadID int64) (chatdomain.Thread, error)
	listThreadsFunc   func(ctx context.Context, userID string) ([]chatdomain.Thread, error)
	appendMessageFunc func(ctx context.Context, threadID int64, role chatdomain.Role, content string, createdAt time.Time) (chatdomain.Message, error)
	listMessagesFunc  func(ctx context.Context, threadID int64) ([]chatdomain.Message, error)
}

func (m *mockThreadRepo) CreateThread(ctx context.Context, userID, title string, createdAt time.Time) (chatdomain.Thread, error) {
	if m.createThreadFunc != nil {
		return m.createThreadFunc(ctx, userID, title, createdAt)
	}
	return chatdomain.Thread{ID: 1, UserID: userID, Title: title, CreatedAt: createdAt}, nil
}

func (m *mockThreadRepo) FindThread(ctx context.Context, userID string, threadID int64) (chatdomain.Thread, error) {
	if m.findThreadFunc != nil {
		return m.findThreadFunc(ctx, userID, threadID)
	}
	return chatdomain.Thread{}, chatrepo.ErrThreadNotFound
}

func (m *mockThreadRepo) ListThreads(ctx context.Context, userID string) ([]chatdomain.Thread, error) {
	if m.listThreadsFunc != nil {
		return m.listThreadsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockThreadRepo) AppendMessage(ctx context.Context, threadID int64, role chatdomain.Role, content string, createdAt time.Time) (chatdomain.Message, error) {
	if m.appendMessageFunc != nil {
		return m.appendMessageFunc(ctx, threadID, role, content, createdAt)
	}
	return chatdomain.Message{ID: 1, ThreadID: threadID, Role: role, Content: content, CreatedAt: createdAt}, nil
}

func (m *mockThreadRepo) ListMessages(ctx context.Context, threadID int64) ([]chatdomain.Message, error) {
	if m.listMessagesFunc != nil {
		return m.listMessagesFunc(ctx, threadID)
	}
	return nil, nil
}

type mockGenerator struct {
	replyFunc func(ctx context.Context, history []chatdomain.Message) (string, error)
}

func (m *mockGenerator) Reply(ctx context.Context, history []chatdomain.Message) (string, error) {
	if m.replyFunc != nil {
		return m.replyFunc(ctx, history)
	}
	return "assistant reply", nil
}

type mockNotifier struct {
	mu     sync.Mutex
	events []chatdomain.Message
}

func (m *mockNotifier) MessageCreated(userID string, msg chatdomain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, msg)
}

func (m *mockNotifier) Events() []chatdomain.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chatdomain.Message, len(m.events))
	copy(out, m.events)
	return out
}
