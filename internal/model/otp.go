package model

import (
	"time"
)

// OTPLength is the number of digits in an emailed one-time code.
const OTPLength = 6

type OTPCode struct {
	ID        string     `db:"id"`
	AccountID string     `db:"account_id"`
	Code      string     `db:"code"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

func (c *OTPCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

func (c *OTPCode) IsUsed() bool {
	return c.UsedAt != nil
}
