package domain

import "time"

type ID string

// User is the identity record behind a session principal. The password
// hash never leaves the repository/service boundary.
type User struct {
	ID           ID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Public is the externally visible projection of a User.
type Public struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, Username: u.Username}
}
