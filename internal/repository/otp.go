package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/storebox/storebox/internal/model"
)

var ErrOTPNotFound = errors.New("one-time code not found")

type OTPRepository interface {
	Create(code *model.OTPCode) error
	Consume(accountID, code string) (*model.OTPCode, error)
	DeleteActiveByAccount(accountID string) error
}

type otpRepository struct {
	db *sqlx.DB
}

func NewOTPRepository(db *sqlx.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (r *otpRepository) Create(code *model.OTPCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO otp_codes (id, account_id, code, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(query,
		code.ID,
		code.AccountID,
		code.Code,
		code.ExpiresAt,
		code.CreatedAt,
	)
	return err
}

// Consume atomically marks a matching code as used and returns it.
// Only one request can win; a second attempt with the same code gets
// ErrOTPNotFound, as does any expired or mismatched code.
func (r *otpRepository) Consume(accountID, code string) (*model.OTPCode, error) {
	var c model.OTPCode
	now := time.Now()

	query := `
		UPDATE otp_codes
		SET used_at = $1
		WHERE account_id = $2
		AND code = $3
		AND used_at IS NULL
		AND expires_at > $4
		RETURNING *
	`

	err := r.db.Get(&c, query, now, accountID, code, now)
	if err == sql.ErrNoRows {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// DeleteActiveByAccount revokes all unused codes for an account. Issuing a
// new code calls this first, so only one code is ever active per account.
func (r *otpRepository) DeleteActiveByAccount(accountID string) error {
	query := `DELETE FROM otp_codes WHERE account_id = $1 AND used_at IS NULL`
	_, err := r.db.Exec(query, accountID)
	return err
}
