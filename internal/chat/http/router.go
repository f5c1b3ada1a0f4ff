package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mzotova/threadline/internal/auth/sessionauth"
	chatdomain "github.com/mzotova/threadline/internal/chat/domain"
	"github.com/mzotova/threadline/internal/chat/service"
	"github.com/mzotova/threadline/internal/common/config"
	commonhttp "github.com/mzotova/threadline/internal/common/http"
	"github.com/mzotova/threadline/internal/common/logger"
)

type submitRequest struct {
	ThreadID int64  `json:"thread_id"`
	Content  string `json:"content"`
}

type messagePayload struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type threadPayload struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type submitResponse struct {
	ThreadID int64            `json:"thread_id"`
	Messages []messagePayload `json:"messages"`
}

type threadsResponse struct {
	Threads []threadPayload `json:"threads"`
}

type messagesResponse struct {
	ThreadID int64            `json:"thread_id"`
	Messages []messagePayload `json:"messages"`
}

type Handler struct {
	chat *service.ChatService
	cfg  config.AppConfig
	log  *logger.Logger
}

func NewHandler(chat *service.ChatService, cfg config.AppConfig, log *logger.Logger) http.Handler {
	h := &Handler{chat: chat, cfg: cfg, log: log}

	timeout := commonhttp.WithTimeout(cfg.RequestTimeout)
	submitTimeout := commonhttp.WithTimeout(cfg.SubmitTimeout)
	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", post(sessionauth.Require(submitTimeout(h.submit))))
	mux.HandleFunc("/api/threads", get(sessionauth.Require(timeout(h.listThreads))))
	mux.HandleFunc("/api/threads/", get(sessionauth.Require(timeout(h.threadMessages))))
	return mux
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	principal, _ := sessionauth.FromContext(r.Context())

	var req submitRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("submit failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	result, err := h.chat.Submit(r.Context(), service.SubmitInput{
		UserID:   principal.UserID,
		ThreadID: req.ThreadID,
		Content:  req.Content,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, submitResponse{
		ThreadID: result.Thread.ID,
		Messages: toMessagePayloads(result.Messages),
	})
}

func (h *Handler) listThreads(w http.ResponseWriter, r *http.Request) {
	principal, _ := sessionauth.FromContext(r.Context())

	threads, err := h.chat.ListThreads(r.Context(), principal.UserID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	payload := make([]threadPayload, 0, len(threads))
	for _, t := range threads {
		payload = append(payload, threadPayload{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt})
	}
	commonhttp.WriteJSON(w, http.StatusOK, threadsResponse{Threads: payload})
}

// threadMessages serves GET /api/threads/{id}/messages.
func (h *Handler) threadMessages(w http.ResponseWriter, r *http.Request) {
	principal, _ := sessionauth.FromContext(r.Context())

	threadID, ok := parseThreadPath(r.URL.Path)
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeInvalidPath, "unknown path", nil, "")
		return
	}

	messages, err := h.chat.Messages(r.Context(), principal.UserID, threadID)
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, messagesResponse{
		ThreadID: threadID,
		Messages: toMessagePayloads(messages),
	})
}

func parseThreadPath(path string) (int64, bool) {
	rest := strings.TrimPrefix(path, "/api/threads/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "messages" {
		return 0, false
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toMessagePayloads(messages []chatdomain.Message) []messagePayload {
	payload := make([]messagePayload, 0, len(messages))
	for _, m := range messages {
		payload = append(payload, messagePayload{
			ID:        m.ID,
			ThreadID:  m.ThreadID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return payload
}
