package model

import (
	"time"
)

// Session is minted when a one-time code is verified. Secret is the opaque
// value stored in the session cookie; nothing else leaves the server.
type Session struct {
	ID        string    `db:"id"`
	AccountID string    `db:"account_id"`
	Secret    string    `db:"secret"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
