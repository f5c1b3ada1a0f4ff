package domain

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Thread is an ordered conversation between a user and the assistant. The
// title is derived from the first message when the thread is created.
type Thread struct {
	ID        int64
	UserID    string
	Title     string
	CreatedAt time.Time
}

type Message struct {
	ID        int64
	ThreadID  int64
	Role      Role
	Content   string
	CreatedAt time.Time
}
