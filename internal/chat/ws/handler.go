package ws

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/mzotova/threadline/internal/auth/sessionauth"
	"github.com/mzotova/threadline/internal/common/constants"
	commonhttp "github.com/mzotova/threadline/internal/common/http"
	"github.com/mzotova/threadline/internal/common/logger"
)

type Handler struct {
	hub      *Hub
	upgrader gorillaWS.Upgrader
	log      *logger.Logger
}

func NewHandler(hub *Hub, log *logger.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: gorillaWS.Upgrader{
			ReadBufferSize:  constants.WebSocketReadBufSize,
			WriteBufferSize: constants.WebSocketWriteBufSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				host := r.Host
				if host == "" {
					host = r.URL.Host
				}
				return origin == "http://"+host || origin == "https://"+host
			},
		},
		log: log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal, ok := sessionauth.FromContext(r.Context())
	if !ok {
		commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeUnauthenticated, "not logged in", nil, "")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed user_id=%s: %v", principal.UserID, err)
		return
	}

	client := NewClient(h.hub, conn, principal.UserID, h.log)
	h.hub.Register(client)
	client.Start()
}
