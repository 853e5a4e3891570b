package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storebox/storebox/internal/model"
	"github.com/storebox/storebox/internal/repository"
	"github.com/storebox/storebox/internal/validation"
)

// SessionCookieName is the cookie carrying the opaque session secret.
const SessionCookieName = "appwrite-session"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidFullname  = errors.New("invalid full name")
	ErrInvalidOTP       = errors.New("invalid or expired code")
)

// AuthIDs carries the identifiers a client needs to complete one-time-code
// verification. Both fields hold the account identifier; the pair is kept
// so the verify call can echo them back.
type AuthIDs struct {
	AccountID string `json:"accountId"`
	UserID    string `json:"userId"`
}

// SignInResult is the sign-in response shape. A missing user is reported
// through nil identifiers and the Error marker rather than a Go error, so
// the client can steer the visitor toward sign-up.
type SignInResult struct {
	AccountID *string `json:"accountId"`
	UserID    *string `json:"userId"`
	Error     string  `json:"error,omitempty"`
}

type AuthService struct {
	accountRepo   repository.AccountRepository
	userRepo      repository.UserRepository
	otpRepo       repository.OTPRepository
	sessionRepo   repository.SessionRepository
	emailService  *EmailService
	otpExpiry     time.Duration
	sessionExpiry time.Duration
}

func NewAuthService(
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	otpRepo repository.OTPRepository,
	sessionRepo repository.SessionRepository,
	emailService *EmailService,
	otpExpiry time.Duration,
	sessionExpiry time.Duration,
) *AuthService {
	return &AuthService{
		accountRepo:   accountRepo,
		userRepo:      userRepo,
		otpRepo:       otpRepo,
		sessionRepo:   sessionRepo,
		emailService:  emailService,
		otpExpiry:     otpExpiry,
		sessionExpiry: sessionExpiry,
	}
}

// SendOTP issues a fresh one-time code for the email and delivers it.
// The account record is created on first contact; any previously active
// code is revoked first, so exactly one code is valid at a time.
func (s *AuthService) SendOTP(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return "", ErrInvalidEmail
	}

	account, err := s.accountRepo.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrAccountNotFound) {
			return "", fmt.Errorf("failed to look up account: %w", err)
		}

		account = &model.Account{
			ID:        uuid.New().String(),
			Email:     email,
			CreatedAt: time.Now(),
		}
		err = s.accountRepo.Create(account)
		if err != nil {
			return "", fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("new account created", "email", email, "account_id", account.ID)
	}

	err = s.otpRepo.DeleteActiveByAccount(account.ID)
	if err != nil {
		slog.Warn("failed to revoke previous codes", "error", err, "account_id", account.ID)
	}

	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	err = s.otpRepo.Create(&model.OTPCode{
		AccountID: account.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpExpiry),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store code: %w", err)
	}

	err = s.emailService.SendOTPEmail(email, code)
	if err != nil {
		slog.Error("failed to send one-time code email", "error", err, "email", email)
		return "", fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("one-time code sent", "email", email)
	return account.ID, nil
}

// CreateAccount starts the sign-up flow: a code goes out regardless of
// whether the email is known, and a User record is created on first
// sign-up with a placeholder avatar.
func (s *AuthService) CreateAccount(fullname, email string) (*AuthIDs, error) {
	fullname = strings.TrimSpace(fullname)
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateFullname(fullname)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFullname, err)
	}

	existing, err := s.userRepo.ByEmail(email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	accountID, err := s.SendOTP(email)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if existing == nil {
		user := &model.User{
			ID:        uuid.New().String(),
			Fullname:  fullname,
			Email:     email,
			Avatar:    model.AvatarPlaceholderURL,
			AccountID: accountID,
			CreatedAt: time.Now(),
		}
		err = s.userRepo.Create(user)
		if err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("new user created", "email", email, "user_id", user.ID)
	}

	return &AuthIDs{AccountID: accountID, UserID: accountID}, nil
}

// SignIn starts the sign-in flow for an existing user. An unknown email is
// not an error: the result carries nil identifiers and a marker instead.
func (s *AuthService) SignIn(email string) (*SignInResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	_, err := s.userRepo.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return &SignInResult{Error: "User not found"}, nil
		}
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	accountID, err := s.SendOTP(email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	return &SignInResult{AccountID: &accountID, UserID: &accountID}, nil
}

// VerifySecret exchanges a one-time code for a session. The code is
// consumed atomically; replays and expired codes both fail.
func (s *AuthService) VerifySecret(accountID, code string) (*model.Session, error) {
	_, err := s.otpRepo.Consume(accountID, code)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}

	session := &model.Session{
		AccountID: accountID,
		Secret:    secret,
		ExpiresAt: time.Now().Add(s.sessionExpiry),
	}
	err = s.sessionRepo.Create(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("session created", "account_id", accountID, "session_id", session.ID)
	return session, nil
}

// CurrentUser resolves the authenticated user from a session secret.
// A missing session, account, or user record all collapse into
// ErrNotAuthenticated; the cause is logged, not surfaced.
func (s *AuthService) CurrentUser(secret string) (*model.User, error) {
	if secret == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessionRepo.BySecret(secret)
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			slog.Warn("session lookup failed", "error", err)
		}
		return nil, ErrNotAuthenticated
	}

	user, err := s.userRepo.ByAccountID(session.AccountID)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			slog.Warn("user lookup failed", "error", err, "account_id", session.AccountID)
		}
		return nil, ErrNotAuthenticated
	}

	return user, nil
}

// SignOut deletes the session carrying the given secret. Callers clear the
// cookie and redirect regardless of the returned error.
func (s *AuthService) SignOut(secret string) error {
	session, err := s.sessionRepo.BySecret(secret)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up session: %w", err)
	}

	err = s.sessionRepo.Delete(session.ID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("session deleted", "session_id", session.ID)
	return nil
}

// SetSessionCookie writes the session cookie: whole-site scope, HTTP-only,
// strict same-site, secure transport only.
func (s *AuthService) SetSessionCookie(w http.ResponseWriter, secret string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    secret,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func generateOTP() (string, error) {
	const digits = "0123456789"

	buf := make([]byte, model.OTPLength)
	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}

	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}

func generateSecret() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
