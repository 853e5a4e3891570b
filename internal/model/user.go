package model

import (
	"time"
)

// AvatarPlaceholderURL is assigned to every user created at sign-up.
const AvatarPlaceholderURL = "/assets/avatar-placeholder.png"

type User struct {
	ID        string    `db:"id" json:"id"`
	Fullname  string    `db:"fullname" json:"fullname"`
	Email     string    `db:"email" json:"email"`
	Avatar    string    `db:"avatar" json:"avatar"`
	AccountID string    `db:"account_id" json:"accountid"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
