package service

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storebox/storebox/internal/model"
	"github.com/storebox/storebox/internal/repository"
	"github.com/storebox/storebox/internal/storage"
)

// In-memory fakes for the repository and storage contracts. They mirror the
// SQL implementations closely enough that service tests exercise real
// visibility, sorting and consume semantics without a database.

type fakeFileRepo struct {
	files     map[string]*model.File
	createErr error
	listErr   error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[string]*model.File{}}
}

func (f *fakeFileRepo) Create(file *model.File) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.files[file.ID] = file
	return nil
}

func (f *fakeFileRepo) ByID(id string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	return file, nil
}

func (f *fakeFileRepo) List(user *model.User, opts repository.FileListOptions) ([]*model.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	var files []*model.File
	for _, file := range f.files {
		if !file.VisibleTo(user) {
			continue
		}
		if len(opts.Types) > 0 && !contains(opts.Types, file.Type) {
			continue
		}
		if opts.Search != "" && !strings.Contains(file.Name, opts.Search) {
			continue
		}
		files = append(files, file)
	}

	sort.SliceStable(files, func(i, j int) bool {
		var less bool
		switch opts.SortField {
		case "name":
			less = files[i].Name < files[j].Name
		case "size":
			less = files[i].Size < files[j].Size
		case "updated_at":
			less = files[i].UpdatedAt.Before(files[j].UpdatedAt)
		default:
			less = files[i].CreatedAt.Before(files[j].CreatedAt)
		}
		if opts.SortDesc {
			return !less
		}
		return less
	})

	if opts.Limit > 0 && len(files) > opts.Limit {
		files = files[:opts.Limit]
	}
	return files, nil
}

func (f *fakeFileRepo) UpdateName(id, name string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	file.Name = name
	file.UpdatedAt = time.Now()
	return file, nil
}

func (f *fakeFileRepo) ReplaceUsers(id string, emails []string) (*model.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	file.Users = append([]string{}, emails...)
	file.UpdatedAt = time.Now()
	return file, nil
}

func (f *fakeFileRepo) Delete(id string) error {
	_, ok := f.files[id]
	if !ok {
		return repository.ErrFileNotFound
	}
	delete(f.files, id)
	return nil
}

func (f *fakeFileRepo) AllBucketFileIDs() ([]string, error) {
	ids := make([]string, 0, len(f.files))
	for _, file := range f.files {
		ids = append(ids, file.BucketFileID)
	}
	return ids, nil
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

type fakeStorage struct {
	objects   map[string]time.Time
	deletes   map[string]int
	saveErr   error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: map[string]time.Time{},
		deletes: map[string]int{},
	}
}

func (f *fakeStorage) Save(key string, body io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	_, _ = io.ReadAll(body)
	f.objects[key] = time.Now()
	return nil
}

func (f *fakeStorage) Delete(key string) error {
	f.deletes[key]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) ObjectURL(key string) string {
	return "https://blobs.test/" + key
}

func (f *fakeStorage) DownloadURL(key, filename string) (string, error) {
	return "https://blobs.test/" + key + "?download=" + filename, nil
}

func (f *fakeStorage) List() ([]storage.Object, error) {
	objects := make([]storage.Object, 0, len(f.objects))
	for key, modified := range f.objects {
		objects = append(objects, storage.Object{Key: key, LastModified: modified})
	}
	return objects, nil
}

type fakeAccountRepo struct {
	accounts map[string]*model.Account // by email
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*model.Account{}}
}

func (f *fakeAccountRepo) Create(account *model.Account) error {
	if _, ok := f.accounts[account.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	f.accounts[account.Email] = account
	return nil
}

func (f *fakeAccountRepo) ByID(id string) (*model.Account, error) {
	for _, account := range f.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (f *fakeAccountRepo) ByEmail(email string) (*model.Account, error) {
	account, ok := f.accounts[email]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return account, nil
}

type fakeUserRepo struct {
	users map[string]*model.User // by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if _, ok := f.users[user.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) ByID(id string) (*model.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ByAccountID(accountID string) (*model.User, error) {
	for _, user := range f.users {
		if user.AccountID == accountID {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeOTPRepo struct {
	codes []*model.OTPCode
}

func (f *fakeOTPRepo) Create(code *model.OTPCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	f.codes = append(f.codes, code)
	return nil
}

func (f *fakeOTPRepo) Consume(accountID, code string) (*model.OTPCode, error) {
	for _, c := range f.codes {
		if c.AccountID == accountID && c.Code == code && !c.IsUsed() && !c.IsExpired() {
			now := time.Now()
			c.UsedAt = &now
			return c, nil
		}
	}
	return nil, repository.ErrOTPNotFound
}

func (f *fakeOTPRepo) DeleteActiveByAccount(accountID string) error {
	kept := f.codes[:0]
	for _, c := range f.codes {
		if c.AccountID == accountID && !c.IsUsed() {
			continue
		}
		kept = append(kept, c)
	}
	f.codes = kept
	return nil
}

func (f *fakeOTPRepo) activeFor(accountID string) []*model.OTPCode {
	var active []*model.OTPCode
	for _, c := range f.codes {
		if c.AccountID == accountID && !c.IsUsed() && !c.IsExpired() {
			active = append(active, c)
		}
	}
	return active
}

type fakeSessionRepo struct {
	sessions map[string]*model.Session // by secret
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*model.Session{}}
}

func (f *fakeSessionRepo) Create(session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	f.sessions[session.Secret] = session
	return nil
}

func (f *fakeSessionRepo) BySecret(secret string) (*model.Session, error) {
	session, ok := f.sessions[secret]
	if !ok || session.IsExpired() {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) Delete(id string) error {
	for secret, session := range f.sessions {
		if session.ID == id {
			delete(f.sessions, secret)
			return nil
		}
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired() (int64, error) {
	var removed int64
	for secret, session := range f.sessions {
		if session.IsExpired() {
			delete(f.sessions, secret)
			removed++
		}
	}
	return removed, nil
}
