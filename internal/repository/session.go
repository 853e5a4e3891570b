package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/storebox/storebox/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(session *model.Session) error
	BySecret(secret string) (*model.Session, error)
	Delete(id string) error
	DeleteExpired() (int64, error)
}

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO sessions (id, account_id, secret, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query,
		session.ID,
		session.AccountID,
		session.Secret,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return err
}

// BySecret returns the unexpired session carrying the given secret.
func (r *sessionRepository) BySecret(secret string) (*model.Session, error) {
	session := &model.Session{}
	query := `SELECT * FROM sessions WHERE secret = $1 AND expires_at > $2`

	err := r.db.Get(session, query, secret, time.Now())
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}

	return session, err
}

func (r *sessionRepository) Delete(id string) error {
	query := `DELETE FROM sessions WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}

// DeleteExpired removes expired sessions. Maintenance only; the lookup
// already filters on expiry.
func (r *sessionRepository) DeleteExpired() (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < $1`
	result, err := r.db.Exec(query, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
