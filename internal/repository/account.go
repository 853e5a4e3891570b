package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/storebox/storebox/internal/model"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountRepository interface {
	Create(account *model.Account) error
	ByID(id string) (*model.Account, error)
	ByEmail(email string) (*model.Account, error)
}

type accountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(account *model.Account) error {
	query := `INSERT INTO accounts (id, email, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.Exec(query, account.ID, account.Email, account.CreatedAt)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

func (r *accountRepository) ByID(id string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT * FROM accounts WHERE id = $1`

	err := r.db.Get(account, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}

	return account, err
}

func (r *accountRepository) ByEmail(email string) (*model.Account, error) {
	account := &model.Account{}
	query := `SELECT * FROM accounts WHERE email = $1`

	err := r.db.Get(account, query, email)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}

	return account, err
}
