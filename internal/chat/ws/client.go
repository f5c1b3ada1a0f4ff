package ws

import (
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/mzotova/threadline/internal/common/constants"
	"github.com/mzotova/threadline/internal/common/logger"
)

type Client struct {
	hub    *Hub
	conn   *gorillaWS.Conn
	userID string
	send   chan []byte
	log    *logger.Logger
}

func NewClient(hub *Hub, conn *gorillaWS.Conn, userID string, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, constants.WebSocketSendBufSize),
		log:    log,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump discards inbound frames; the connection is push-only. It exists
// to service pong handling and to notice the peer going away.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
	c.conn.SetReadLimit(constants.WebSocketMaxMsgSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.WebSocketPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				c.log.Warnf("websocket read error user_id=%s: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(constants.WebSocketPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			if !ok {
				c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
