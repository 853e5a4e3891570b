package model

import (
	"time"
)

const (
	FileTypeImage    = "image"
	FileTypeDocument = "document"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeOther    = "other"
)

// FileTypes lists every valid type category.
var FileTypes = []string{
	FileTypeImage,
	FileTypeDocument,
	FileTypeVideo,
	FileTypeAudio,
	FileTypeOther,
}

type File struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Type         string    `db:"type" json:"type"`
	Extension    string    `db:"extension" json:"extension"`
	Size         int64     `db:"size" json:"size"`
	URL          string    `db:"url" json:"url"`
	OwnerID      string    `db:"owner_id" json:"owner"`       // set once at upload
	AccountID    string    `db:"account_id" json:"accountid"` // set once at upload
	BucketFileID string    `db:"bucket_file_id" json:"bucketFileId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Collaborator emails, loaded from the file_users table.
	// Order is irrelevant and duplicates are kept as supplied.
	Users []string `db:"-" json:"users"`
}

// SharedWith reports whether email appears in the collaborator set.
func (f *File) SharedWith(email string) bool {
	for _, e := range f.Users {
		if e == email {
			return true
		}
	}
	return false
}

// VisibleTo reports whether user may see (and mutate) this file:
// the user owns it, shares its account, or is a collaborator.
func (f *File) VisibleTo(user *User) bool {
	if user == nil {
		return false
	}
	return f.OwnerID == user.ID || f.AccountID == user.AccountID || f.SharedWith(user.Email)
}
