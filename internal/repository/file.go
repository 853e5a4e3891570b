package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/storebox/storebox/internal/model"
)

var ErrFileNotFound = errors.New("file not found")

// FileListOptions narrows and orders a visibility-scoped file listing.
// SortField must be a column name already validated by the caller.
type FileListOptions struct {
	Types     []string
	Search    string
	SortField string
	SortDesc  bool
	Limit     int
}

type FileRepository interface {
	Create(file *model.File) error
	ByID(id string) (*model.File, error)
	List(user *model.User, opts FileListOptions) ([]*model.File, error)
	UpdateName(id, name string) (*model.File, error)
	ReplaceUsers(id string, emails []string) (*model.File, error)
	Delete(id string) error
	AllBucketFileIDs() ([]string, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, name, type, extension, size, url, owner_id, account_id, bucket_file_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		file.ID,
		file.Name,
		file.Type,
		file.Extension,
		file.Size,
		file.URL,
		file.OwnerID,
		file.AccountID,
		file.BucketFileID,
		file.CreatedAt,
		file.UpdatedAt,
	)
	return err
}

func (r *fileRepository) ByID(id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.attachUsers([]*model.File{file})
	if err != nil {
		return nil, err
	}

	return file, nil
}

// List returns the files visible to user: owned by them, sharing their
// account, or listing their email as a collaborator. Filters, search,
// sort and limit are applied in the query.
func (r *fileRepository) List(user *model.User, opts FileListOptions) ([]*model.File, error) {
	query := `SELECT f.* FROM files f
	          WHERE (f.owner_id = ? OR f.account_id = ?
	                 OR EXISTS (SELECT 1 FROM file_users fu WHERE fu.file_id = f.id AND fu.email = ?))`
	args := []any{user.ID, user.AccountID, user.Email}

	if len(opts.Types) > 0 {
		in, inArgs, err := sqlx.In(`f.type IN (?)`, opts.Types)
		if err != nil {
			return nil, fmt.Errorf("failed to build type filter: %w", err)
		}
		query += ` AND ` + in
		args = append(args, inArgs...)
	}

	if opts.Search != "" {
		query += ` AND f.name LIKE ?`
		args = append(args, "%"+opts.Search+"%")
	}

	sortField := opts.SortField
	if sortField == "" {
		sortField = "created_at"
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(` ORDER BY f.%s %s`, sortField, direction)

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var files []*model.File
	err := r.db.Select(&files, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	err = r.attachUsers(files)
	if err != nil {
		return nil, err
	}

	return files, nil
}

// UpdateName changes only the display name. The type category and extension
// columns are left alone even when the new name implies different ones.
func (r *fileRepository) UpdateName(id, name string) (*model.File, error) {
	query := `UPDATE files SET name = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, name, time.Now(), id)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrFileNotFound
	}

	return r.ByID(id)
}

// ReplaceUsers swaps the collaborator set wholesale inside a transaction.
// The supplied emails are stored exactly as given, duplicates included.
func (r *fileRepository) ReplaceUsers(id string, emails []string) (*model.File, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(r.db.Rebind(`UPDATE files SET updated_at = ? WHERE id = ?`), time.Now(), id)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrFileNotFound
	}

	_, err = tx.Exec(r.db.Rebind(`DELETE FROM file_users WHERE file_id = ?`), id)
	if err != nil {
		return nil, err
	}

	for _, email := range emails {
		_, err = tx.Exec(r.db.Rebind(`INSERT INTO file_users (file_id, email) VALUES (?, ?)`), id, email)
		if err != nil {
			return nil, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, err
	}

	return r.ByID(id)
}

func (r *fileRepository) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// SQLite does not always enforce the cascade, so clear collaborators first
	_, err = tx.Exec(r.db.Rebind(`DELETE FROM file_users WHERE file_id = ?`), id)
	if err != nil {
		return err
	}

	result, err := tx.Exec(r.db.Rebind(`DELETE FROM files WHERE id = ?`), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	return tx.Commit()
}

// AllBucketFileIDs returns every referenced object key. Used by the
// reconciliation sweep to detect orphaned blobs.
func (r *fileRepository) AllBucketFileIDs() ([]string, error) {
	var ids []string
	err := r.db.Select(&ids, `SELECT bucket_file_id FROM files`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// attachUsers loads collaborator emails for the given files in one query.
func (r *fileRepository) attachUsers(files []*model.File) error {
	if len(files) == 0 {
		return nil
	}

	ids := make([]string, 0, len(files))
	byID := make(map[string]*model.File, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
		byID[f.ID] = f
	}

	query, args, err := sqlx.In(`SELECT file_id, email FROM file_users WHERE file_id IN (?)`, ids)
	if err != nil {
		return fmt.Errorf("failed to build collaborator query: %w", err)
	}

	var rows []struct {
		FileID string `db:"file_id"`
		Email  string `db:"email"`
	}
	err = r.db.Select(&rows, r.db.Rebind(query), args...)
	if err != nil {
		return err
	}

	for _, row := range rows {
		f := byID[row.FileID]
		if f != nil {
			f.Users = append(f.Users, row.Email)
		}
	}

	// Visibility checks treat a nil set and an empty set the same; keep nil
	// out of JSON responses
	for _, f := range files {
		if f.Users == nil {
			f.Users = []string{}
		}
	}

	return nil
}
