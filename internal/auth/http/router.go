package http

import (
	"net/http"
	"time"

	"github.com/mzotova/threadline/internal/auth/service"
	"github.com/mzotova/threadline/internal/auth/sessionauth"
	"github.com/mzotova/threadline/internal/common/config"
	"github.com/mzotova/threadline/internal/common/constants"
	commonhttp "github.com/mzotova/threadline/internal/common/http"
	"github.com/mzotova/threadline/internal/common/logger"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type registerResponse struct {
	Message string      `json:"message"`
	User    userPayload `json:"user"`
}

type loginResponse struct {
	User userPayload `json:"user"`
}

type Handler struct {
	auth *service.AuthService
	cfg  config.AppConfig
	log  *logger.Logger
}

func NewHandler(auth *service.AuthService, cfg config.AppConfig, log *logger.Logger) http.Handler {
	h := &Handler{auth: auth, cfg: cfg, log: log}

	timeout := commonhttp.WithTimeout(cfg.RequestTimeout)
	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", post(timeout(h.register)))
	mux.HandleFunc("/api/login", post(timeout(h.login)))
	mux.HandleFunc("/api/logout", post(timeout(h.logout)))
	mux.HandleFunc("/api/user", get(sessionauth.Require(h.currentUser)))
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, registerResponse{
		Message: "Registration successful",
		User:    userPayload{ID: string(user.ID), Username: user.Username},
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("login failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	session, user, err := h.auth.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		commonhttp.HandleError(w, r, err, h.log)
		return
	}

	setSessionCookie(w, r, session.RawToken, session.ExpiresAt)
	commonhttp.WriteJSON(w, http.StatusOK, loginResponse{
		User: userPayload{ID: string(user.ID), Username: user.Username},
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			h.log.Errorf("logout revoke failed: %v", err)
		}
	}

	clearSessionCookie(w, r)
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := sessionauth.FromContext(r.Context())

	commonhttp.WriteJSON(w, http.StatusOK, userPayload{
		ID:       principal.UserID,
		Username: principal.Username,
	})
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	if token == "" {
		return
	}

	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	}

	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	}

	http.SetCookie(w, cookie)
}
