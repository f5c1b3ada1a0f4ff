package ws

import "time"

type EventType string

const (
	TypeMessageCreated EventType = "message_created"
)

type Event struct {
	Type    EventType      `json:"type"`
	Payload MessagePayload `json:"payload"`
}

type MessagePayload struct {
	ID        int64     `json:"id"`
	ThreadID  int64     `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
