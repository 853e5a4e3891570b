package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storebox/storebox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	accounts *fakeAccountRepo
	users    *fakeUserRepo
	otps     *fakeOTPRepo
	sessions *fakeSessionRepo
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	accounts := newFakeAccountRepo()
	users := newFakeUserRepo()
	otps := &fakeOTPRepo{}
	sessions := newFakeSessionRepo()

	emailService := NewEmailService("", "noreply@storebox.test", "StoreBox", true)
	svc := NewAuthService(accounts, users, otps, sessions, emailService, 10*time.Minute, 168*time.Hour)

	return &authFixture{
		accounts: accounts,
		users:    users,
		otps:     otps,
		sessions: sessions,
		svc:      svc,
	}
}

func (f *authFixture) signUp(t *testing.T, fullname, email string) *AuthIDs {
	t.Helper()
	ids, err := f.svc.CreateAccount(fullname, email)
	require.NoError(t, err)
	return ids
}

func TestCreateAccount(t *testing.T) {
	f := newAuthFixture()

	ids := f.signUp(t, "Alice Appleseed", "Alice@Example.COM")
	assert.Equal(t, ids.AccountID, ids.UserID)

	// email is normalized before any record is created
	account, err := f.accounts.ByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, ids.AccountID, account.ID)

	user, err := f.users.ByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Appleseed", user.Fullname)
	assert.Equal(t, model.AvatarPlaceholderURL, user.Avatar)
	assert.Equal(t, account.ID, user.AccountID)

	assert.Len(t, f.otps.activeFor(account.ID), 1)
}

func TestCreateAccountExistingEmail(t *testing.T) {
	f := newAuthFixture()

	first := f.signUp(t, "Alice Appleseed", "alice@example.com")
	second := f.signUp(t, "Different Name", "alice@example.com")

	// signing up again issues a fresh code but never a second user record
	assert.Equal(t, first.AccountID, second.AccountID)
	assert.Len(t, f.users.users, 1)
	assert.Equal(t, "Alice Appleseed", f.users.users["alice@example.com"].Fullname)
	assert.Len(t, f.otps.activeFor(first.AccountID), 1)
}

func TestCreateAccountInvalidFullname(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.CreateAccount("A", "alice@example.com")
	assert.ErrorIs(t, err, ErrInvalidFullname)
	assert.Empty(t, f.accounts.accounts)
}

func TestSignInUnknownEmail(t *testing.T) {
	f := newAuthFixture()

	result, err := f.svc.SignIn("nobody@example.com")
	require.NoError(t, err)

	assert.Nil(t, result.AccountID)
	assert.Nil(t, result.UserID)
	assert.Equal(t, "User not found", result.Error)
	assert.Empty(t, f.otps.codes)
}

func TestSignInKnownEmail(t *testing.T) {
	f := newAuthFixture()
	ids := f.signUp(t, "Alice Appleseed", "alice@example.com")

	result, err := f.svc.SignIn("  ALICE@example.com ")
	require.NoError(t, err)

	require.NotNil(t, result.AccountID)
	require.NotNil(t, result.UserID)
	assert.Equal(t, ids.AccountID, *result.AccountID)
	assert.Equal(t, ids.AccountID, *result.UserID)
	assert.Empty(t, result.Error)
}

func TestSendOTPInvalidEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.SendOTP("not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestSendOTPRevokesPreviousCode(t *testing.T) {
	f := newAuthFixture()

	accountID, err := f.svc.SendOTP("alice@example.com")
	require.NoError(t, err)
	_, err = f.svc.SendOTP("alice@example.com")
	require.NoError(t, err)

	// only the latest code is ever active
	active := f.otps.activeFor(accountID)
	require.Len(t, active, 1)
	assert.Len(t, active[0].Code, model.OTPLength)
}

func TestVerifySecret(t *testing.T) {
	f := newAuthFixture()

	accountID, err := f.svc.SendOTP("alice@example.com")
	require.NoError(t, err)
	code := f.otps.activeFor(accountID)[0].Code

	session, err := f.svc.VerifySecret(accountID, code)
	require.NoError(t, err)
	assert.Equal(t, accountID, session.AccountID)
	assert.Len(t, session.Secret, 64)
	assert.False(t, session.IsExpired())

	stored, err := f.sessions.BySecret(session.Secret)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)

	// the code is consumed; a replay fails
	_, err = f.svc.VerifySecret(accountID, code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifySecretWrongCode(t *testing.T) {
	f := newAuthFixture()

	accountID, err := f.svc.SendOTP("alice@example.com")
	require.NoError(t, err)

	// generated codes are digits only, so this can never match
	_, err = f.svc.VerifySecret(accountID, "no-match")
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.Empty(t, f.sessions.sessions)
}

func TestVerifySecretExpiredCode(t *testing.T) {
	f := newAuthFixture()

	accountID, err := f.svc.SendOTP("alice@example.com")
	require.NoError(t, err)

	code := f.otps.activeFor(accountID)[0]
	code.ExpiresAt = time.Now().Add(-time.Minute)

	_, err = f.svc.VerifySecret(accountID, code.Code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestCurrentUser(t *testing.T) {
	f := newAuthFixture()
	f.signUp(t, "Alice Appleseed", "alice@example.com")

	account, err := f.accounts.ByEmail("alice@example.com")
	require.NoError(t, err)
	code := f.otps.activeFor(account.ID)[0].Code

	session, err := f.svc.VerifySecret(account.ID, code)
	require.NoError(t, err)

	user, err := f.svc.CurrentUser(session.Secret)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = f.svc.CurrentUser("")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = f.svc.CurrentUser("bogus-secret")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	session.ExpiresAt = time.Now().Add(-time.Minute)
	_, err = f.svc.CurrentUser(session.Secret)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSignOut(t *testing.T) {
	f := newAuthFixture()

	accountID, err := f.svc.SendOTP("alice@example.com")
	require.NoError(t, err)
	code := f.otps.activeFor(accountID)[0].Code

	session, err := f.svc.VerifySecret(accountID, code)
	require.NoError(t, err)

	require.NoError(t, f.svc.SignOut(session.Secret))
	_, err = f.sessions.BySecret(session.Secret)
	assert.Error(t, err)

	// signing out an unknown secret is not an error
	assert.NoError(t, f.svc.SignOut("already-gone"))
}

func TestSessionCookie(t *testing.T) {
	f := newAuthFixture()

	w := httptest.NewRecorder()
	expiry := time.Now().Add(168 * time.Hour)
	f.svc.SetSessionCookie(w, "secret-value", expiry)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "appwrite-session", cookie.Name)
	assert.Equal(t, "secret-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	w = httptest.NewRecorder()
	f.svc.ClearSessionCookie(w)

	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].Expires.Before(time.Now()))
}
