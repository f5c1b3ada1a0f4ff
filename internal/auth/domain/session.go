package domain

import "time"

// Session associates an opaque client-held token with a user id. Only the
// HMAC of the token is persisted; RawToken is populated solely on the value
// handed back to the caller right after login.
type Session struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	RawToken  string
}

func (s Session) ExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}
