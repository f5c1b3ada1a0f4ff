package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	"github.com/mzotova/threadline/internal/chat/generate"
	chatrepo "github.com/mzotova/threadline/internal/chat/repository"
	"github.com/mzotova/threadline/internal/common/clock"
	"github.com/mzotova/threadline/internal/common/constants"
	"github.com/mzotova/threadline/internal/common/logger"
	"github.com/mzotova/threadline/internal/observability/metrics"
)

// Notifier receives thread events after they are committed. The websocket
// hub implements it; a nil notifier disables live updates.
type Notifier interface {
	MessageCreated(userID string, msg chatdomain.Message)
}

type ChatService struct {
	repo      chatrepo.ThreadRepository
	generator generate.Generator
	notifier  Notifier
	clock     clock.Clock
	log       *logger.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type ChatServiceDeps struct {
	Repo      chatrepo.ThreadRepository
	Generator generate.Generator
	Notifier  Notifier
	Clock     clock.Clock
	Log       *logger.Logger
}

func NewChatService(deps ChatServiceDeps) *ChatService {
	c := deps.Clock
	if c == nil {
		c = clock.NewRealClock()
	}

	return &ChatService{
		repo:      deps.Repo,
		generator: deps.Generator,
		notifier:  deps.Notifier,
		clock:     c,
		log:       deps.Log,
		inFlight:  make(map[string]struct{}),
	}
}

type SubmitInput struct {
	UserID   string
	ThreadID int64
	Content  string
}

type SubmitResult struct {
	Thread   chatdomain.Thread
	Messages []chatdomain.Message
}

// Submit stores the user message, generates the assistant reply, and stores
// it in the same thread. A thread id of zero creates a new thread titled
// after the message. At most one submission per user runs at a time.
func (s *ChatService) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		metrics.SubmissionsRejected.WithLabelValues("empty").Inc()
		return SubmitResult{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > constants.MaxMessageLength {
		metrics.SubmissionsRejected.WithLabelValues("too_long").Inc()
		return SubmitResult{}, ErrMessageTooLong
	}

	if !s.acquire(input.UserID) {
		metrics.SubmissionsRejected.WithLabelValues("in_flight").Inc()
		return SubmitResult{}, ErrSubmissionInFlight
	}
	defer s.release(input.UserID)

	thread, err := s.resolveThread(ctx, input.UserID, input.ThreadID, content)
	if err != nil {
		return SubmitResult{}, err
	}

	userMsg, err := s.repo.AppendMessage(ctx, thread.ID, chatdomain.RoleUser, content, s.clock.Now())
	if err != nil {
		return SubmitResult{}, err
	}
	metrics.MessagesStored.WithLabelValues(string(chatdomain.RoleUser)).Inc()
	s.notify(input.UserID, userMsg)

	history, err := s.repo.ListMessages(ctx, thread.ID)
	if err != nil {
		return SubmitResult{}, err
	}

	start := s.clock.Now()
	reply, err := s.generator.Reply(ctx, history)
	metrics.GenerationDurationSeconds.Observe(s.clock.Now().Sub(start).Seconds())
	if err != nil {
		metrics.GenerationErrors.Inc()
		s.log.WithFields(ctx, logger.Fields{
			"thread_id": thread.ID,
			"error":     err.Error(),
		}).Error("assistant reply generation failed")
		return SubmitResult{}, ErrGenerationFailed.WithCause(err)
	}

	assistantMsg, err := s.repo.AppendMessage(ctx, thread.ID, chatdomain.RoleAssistant, reply, s.clock.Now())
	if err != nil {
		return SubmitResult{}, err
	}
	metrics.MessagesStored.WithLabelValues(string(chatdomain.RoleAssistant)).Inc()
	s.notify(input.UserID, assistantMsg)

	return SubmitResult{
		Thread:   thread,
		Messages: []chatdomain.Message{userMsg, assistantMsg},
	}, nil
}

func (s *ChatService) ListThreads(ctx context.Context, userID string) ([]chatdomain.Thread, error) {
	return s.repo.ListThreads(ctx, userID)
}

// Messages returns the thread's messages, oldest first. Threads owned by
// other users are reported as missing.
func (s *ChatService) Messages(ctx context.Context, userID string, threadID int64) ([]chatdomain.Message, error) {
	if _, err := s.findThread(ctx, userID, threadID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, threadID)
}

func (s *ChatService) resolveThread(ctx context.Context, userID string, threadID int64, content string) (chatdomain.Thread, error) {
	if threadID != 0 {
		return s.findThread(ctx, userID, threadID)
	}

	thread, err := s.repo.CreateThread(ctx, userID, threadTitle(content), s.clock.Now())
	if err != nil {
		return chatdomain.Thread{}, err
	}
	metrics.ThreadsCreated.Inc()
	s.log.WithFields(ctx, logger.Fields{"thread_id": thread.ID}).Info("thread created")
	return thread, nil
}

func (s *ChatService) findThread(ctx context.Context, userID string, threadID int64) (chatdomain.Thread, error) {
	thread, err := s.repo.FindThread(ctx, userID, threadID)
	if errors.Is(err, chatrepo.ErrThreadNotFound) {
		return chatdomain.Thread{}, ErrThreadNotFound
	}
	if err != nil {
		return chatdomain.Thread{}, err
	}
	return thread, nil
}

func (s *ChatService) acquire(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *ChatService) release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

func (s *ChatService) notify(userID string, msg chatdomain.Message) {
	if s.notifier == nil {
		return
	}
	s.notifier.MessageCreated(userID, msg)
}

// threadTitle derives a title from the first message, truncated on a rune
// boundary.
func threadTitle(content string) string {
	title := content
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)

	runes := []rune(title)
	if len(runes) > constants.MaxThreadTitleLength {
		title = string(runes[:constants.MaxThreadTitleLength-1]) + "…"
	}
	return title
}
