package model

import (
	"time"
)

// Account is the identity-side record keyed by email. Its ID is the
// "account identifier" that correlates sessions and one-time codes with
// the application User record, which is created separately at sign-up.
type Account struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}
