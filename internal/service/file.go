package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storebox/storebox/internal/filetype"
	"github.com/storebox/storebox/internal/model"
	"github.com/storebox/storebox/internal/repository"
	"github.com/storebox/storebox/internal/storage"
	"github.com/storebox/storebox/internal/validation"
)

// DefaultSort orders listings newest first when no sort token is supplied.
const DefaultSort = "$createdAt-desc"

var ErrForbidden = errors.New("not allowed to modify this file")

// ListOptions mirrors the list-view query contract: optional type filters,
// a `field-direction` sort token, a name substring, and a result cap.
type ListOptions struct {
	Types  []string
	Sort   string
	Search string
	Limit  int
}

type FileService struct {
	fileRepo      repository.FileRepository
	storage       storage.Storage
	capacity      int64
	maxUploadSize int64
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage, capacity, maxUploadSize int64) *FileService {
	return &FileService{
		fileRepo:      fileRepo,
		storage:       storage,
		capacity:      capacity,
		maxUploadSize: maxUploadSize,
	}
}

// Upload stores the payload as a new blob object and creates the file record
// referencing it. Owner and account are fixed here and never change. If the
// record cannot be created the blob is deleted again so no orphan remains.
func (s *FileService) Upload(ownerID, accountID, filename string, size int64, body io.Reader) (*model.File, error) {
	err := validation.ValidateUpload(filename, size, s.maxUploadSize)
	if err != nil {
		return nil, err
	}

	fileType, extension := filetype.FromName(filename)

	key := uuid.New().String()
	if extension != "" {
		key += "." + extension
	}

	err = s.storage.Save(key, body)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	now := time.Now()
	file := &model.File{
		ID:           uuid.New().String(),
		Name:         filename,
		Type:         fileType,
		Extension:    extension,
		Size:         size,
		URL:          s.storage.ObjectURL(key),
		OwnerID:      ownerID,
		AccountID:    accountID,
		BucketFileID: key,
		CreatedAt:    now,
		UpdatedAt:    now,
		Users:        []string{},
	}

	err = s.fileRepo.Create(file)
	if err != nil {
		// Compensating action, not a transaction: drop the stored blob so
		// a failed record create does not leak storage
		delErr := s.storage.Delete(key)
		if delErr != nil {
			slog.Error("failed to delete blob during upload cleanup", "error", delErr, "key", key)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	slog.Info("file uploaded", "file_id", file.ID, "name", file.Name, "size", file.Size, "owner_id", ownerID)
	return file, nil
}

// Files lists everything visible to user: owned files, files on the same
// account, and files shared with their email.
func (s *FileService) Files(user *model.User, opts ListOptions) ([]*model.File, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	sortField, sortDesc := parseSort(opts.Sort)

	files, err := s.fileRepo.List(user, repository.FileListOptions{
		Types:     opts.Types,
		Search:    opts.Search,
		SortField: sortField,
		SortDesc:  sortDesc,
		Limit:     opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Rename stores the name as `name.extension`. The type category is
// deliberately not re-derived, so a file renamed across categories keeps
// its original classification.
func (s *FileService) Rename(user *model.User, fileID, name, extension string) (*model.File, error) {
	file, err := s.authorize(user, fileID)
	if err != nil {
		return nil, err
	}

	newName := fmt.Sprintf("%s.%s", name, extension)
	updated, err := s.fileRepo.UpdateName(file.ID, newName)
	if err != nil {
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}

	slog.Info("file renamed", "file_id", file.ID, "name", newName, "user_id", user.ID)
	return updated, nil
}

// UpdateUsers replaces the collaborator set wholesale; removing one
// collaborator means supplying the full remaining set. An empty set
// revokes all shared access.
func (s *FileService) UpdateUsers(user *model.User, fileID string, emails []string) (*model.File, error) {
	file, err := s.authorize(user, fileID)
	if err != nil {
		return nil, err
	}

	updated, err := s.fileRepo.ReplaceUsers(file.ID, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to update collaborators: %w", err)
	}

	slog.Info("file collaborators updated", "file_id", file.ID, "count", len(emails), "user_id", user.ID)
	return updated, nil
}

// Delete removes the file record and then its backing blob. The blob key
// comes from the loaded record, never from the caller. Blob deletion is
// attempted exactly once and not rolled back into the record on failure;
// the reconciliation sweep picks up anything left behind.
func (s *FileService) Delete(user *model.User, fileID string) error {
	file, err := s.authorize(user, fileID)
	if err != nil {
		return err
	}

	err = s.fileRepo.Delete(file.ID)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	err = s.storage.Delete(file.BucketFileID)
	if err != nil {
		slog.Error("failed to delete blob after record deletion", "error", err, "key", file.BucketFileID)
	}

	slog.Info("file deleted", "file_id", file.ID, "user_id", user.ID)
	return nil
}

// DownloadURL builds a time-limited direct download link for a visible file.
func (s *FileService) DownloadURL(user *model.User, fileID string) (string, error) {
	file, err := s.authorize(user, fileID)
	if err != nil {
		return "", err
	}

	url, err := s.storage.DownloadURL(file.BucketFileID, file.Name)
	if err != nil {
		return "", fmt.Errorf("failed to build download URL: %w", err)
	}

	return url, nil
}

// TotalSpaceUsed aggregates byte size and the most recent update per type
// category over the user's visible files, against the configured capacity
// ceiling. The summary is derived fresh on every call.
func (s *FileService) TotalSpaceUsed(user *model.User) (*model.SpaceSummary, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	files, err := s.fileRepo.List(user, repository.FileListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to compute space used: %w", err)
	}

	summary := model.NewSpaceSummary(s.capacity)
	for _, file := range files {
		summary.Add(file)
	}

	return summary, nil
}

// authorize loads the file and re-verifies the caller against its
// owner/account/collaborator set. UI gating alone is not trusted.
func (s *FileService) authorize(user *model.User, fileID string) (*model.File, error) {
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	if !file.VisibleTo(user) {
		return nil, ErrForbidden
	}

	return file, nil
}

// sortFields maps list-view sort tokens to their backing columns. Unknown
// fields fall back to creation time.
var sortFields = map[string]string{
	"$createdAt": "created_at",
	"$updatedAt": "updated_at",
	"name":       "name",
	"size":       "size",
}

// parseSort splits a `field-direction` token. Any direction other than
// "desc" sorts ascending.
func parseSort(token string) (field string, desc bool) {
	if token == "" {
		token = DefaultSort
	}

	name := token
	direction := ""
	if i := strings.LastIndex(token, "-"); i >= 0 {
		name = token[:i]
		direction = token[i+1:]
	}

	column, ok := sortFields[name]
	if !ok {
		column = "created_at"
	}

	return column, direction == "desc"
}
