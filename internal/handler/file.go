package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/storebox/storebox/internal/api"
	"github.com/storebox/storebox/internal/ctxkeys"
	"github.com/storebox/storebox/internal/model"
	"github.com/storebox/storebox/internal/repository"
	"github.com/storebox/storebox/internal/service"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload accepts a multipart upload and stores it for the current user.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	uploaded, err := h.fileService.Upload(user.ID, user.AccountID, header.Filename, header.Size, file)
	if err != nil {
		slog.Error("upload failed", "error", err, "user_id", user.ID, "name", header.Filename)
		api.Error(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	api.JSON(w, http.StatusCreated, uploaded)
}

type fileListResponse struct {
	Total int           `json:"total"`
	Files []*model.File `json:"files"`
}

// List returns the files visible to the current user. Query parameters:
// type (repeatable), sort (`field-direction` token, default newest first),
// search (name substring), limit.
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	q := r.URL.Query()

	var types []string
	for _, t := range q["type"] {
		for _, part := range strings.Split(t, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				types = append(types, part)
			}
		}
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	files, err := h.fileService.Files(user, service.ListOptions{
		Types:  types,
		Sort:   q.Get("sort"),
		Search: q.Get("search"),
		Limit:  limit,
	})
	if err != nil {
		slog.Error("file listing failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to list files")
		return
	}

	api.JSON(w, http.StatusOK, fileListResponse{Total: len(files), Files: files})
}

type renameRequest struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
}

// Rename updates the display name to `name.extension`. The type category
// stays as derived at upload time.
func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	fileID := r.PathValue("id")

	var req renameRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	file, err := h.fileService.Rename(user, fileID, req.Name, req.Extension)
	if err != nil {
		h.writeError(w, err, user.ID, fileID, "rename")
		return
	}

	api.JSON(w, http.StatusOK, file)
}

type shareRequest struct {
	Emails []string `json:"emails"`
}

// Share replaces the file's collaborator set wholesale. Removing a single
// collaborator means the client sends the full remaining set; an empty set
// revokes all shared access.
func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	fileID := r.PathValue("id")

	var req shareRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Emails == nil {
		req.Emails = []string{}
	}

	file, err := h.fileService.UpdateUsers(user, fileID, req.Emails)
	if err != nil {
		h.writeError(w, err, user.ID, fileID, "share")
		return
	}

	api.JSON(w, http.StatusOK, file)
}

type deleteResponse struct {
	Status string `json:"status"`
}

// Delete removes the file record and its blob. The blob key is taken from
// the stored record, so the client cannot point the delete at someone
// else's object.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	fileID := r.PathValue("id")

	err := h.fileService.Delete(user, fileID)
	if err != nil {
		h.writeError(w, err, user.ID, fileID, "delete")
		return
	}

	api.JSON(w, http.StatusOK, deleteResponse{Status: "success"})
}

type downloadResponse struct {
	URL string `json:"url"`
}

// Download returns a time-limited link that forces a download with the
// file's display name.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	fileID := r.PathValue("id")

	url, err := h.fileService.DownloadURL(user, fileID)
	if err != nil {
		h.writeError(w, err, user.ID, fileID, "download")
		return
	}

	api.JSON(w, http.StatusOK, downloadResponse{URL: url})
}

// Usage returns the storage-usage summary for the current user.
func (h *FileHandler) Usage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	summary, err := h.fileService.TotalSpaceUsed(user)
	if err != nil {
		slog.Error("usage aggregation failed", "error", err, "user_id", user.ID)
		api.Error(w, http.StatusInternalServerError, "failed to compute space used")
		return
	}

	api.JSON(w, http.StatusOK, summary)
}

func (h *FileHandler) writeError(w http.ResponseWriter, err error, userID, fileID, op string) {
	switch {
	case errors.Is(err, repository.ErrFileNotFound):
		api.Error(w, http.StatusNotFound, "file not found")
	case errors.Is(err, service.ErrForbidden):
		api.Error(w, http.StatusForbidden, "not allowed to modify this file")
	case errors.Is(err, service.ErrNotAuthenticated):
		api.Error(w, http.StatusUnauthorized, "not authenticated")
	default:
		slog.Error("file operation failed", "op", op, "error", err, "user_id", userID, "file_id", fileID)
		api.Error(w, http.StatusInternalServerError, "operation failed")
	}
}
