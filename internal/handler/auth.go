package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/storebox/storebox/internal/api"
	"github.com/storebox/storebox/internal/ctxkeys"
	"github.com/storebox/storebox/internal/service"
	"github.com/storebox/storebox/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type signUpRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// SignUp starts account creation: validates the form fields, issues a
// one-time code, and returns the identifiers needed to verify it.
// Failures surface their message verbatim; the auth form displays it.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = validation.ValidateFullname(req.Fullname)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err = validation.ValidateEmail(strings.TrimSpace(req.Email))
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ids, err := h.authService.CreateAccount(req.Fullname, req.Email)
	if err != nil {
		slog.Error("sign-up failed", "error", err, "email", req.Email)
		api.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	api.JSON(w, http.StatusOK, ids)
}

type signInRequest struct {
	Email string `json:"email"`
}

// SignIn starts the sign-in flow. An unknown email is not an error
// response: the body carries null identifiers and a "User not found"
// marker so the form can suggest signing up.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = validation.ValidateEmail(strings.TrimSpace(req.Email))
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.authService.SignIn(req.Email)
	if err != nil {
		slog.Error("sign-in failed", "error", err, "email", req.Email)
		api.Error(w, http.StatusInternalServerError, "failed to sign in")
		return
	}

	api.JSON(w, http.StatusOK, result)
}

// ResendOTP re-issues the emailed code for the same address. The previous
// code is revoked server-side, so only the newest one verifies.
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accountID, err := h.authService.SendOTP(req.Email)
	if err != nil {
		slog.Error("resend failed", "error", err, "email", req.Email)
		api.Error(w, http.StatusInternalServerError, "failed to send code")
		return
	}

	api.JSON(w, http.StatusOK, service.AuthIDs{AccountID: accountID, UserID: accountID})
}

type verifyRequest struct {
	AccountID string `json:"accountId"`
	UserID    string `json:"userId"`
	Password  string `json:"password"` // the one-time code
}

type verifyResponse struct {
	SessionID string `json:"sessionId"`
}

// Verify exchanges the one-time code for a session and sets the session
// cookie.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	err := api.Decode(r, &req)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.VerifySecret(req.AccountID, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			api.Error(w, http.StatusUnauthorized, err.Error())
			return
		}
		slog.Error("verification failed", "error", err, "account_id", req.AccountID)
		api.Error(w, http.StatusInternalServerError, "failed to verify code")
		return
	}

	h.authService.SetSessionCookie(w, session.Secret, session.ExpiresAt)
	api.JSON(w, http.StatusOK, verifyResponse{SessionID: session.ID})
}

// SignOut deletes the session and clears the cookie. The redirect to the
// sign-in entry point happens even if session deletion failed.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.SessionCookieName)
	if err == nil {
		err = h.authService.SignOut(cookie.Value)
		if err != nil {
			slog.Error("sign-out failed", "error", err)
		}
	}

	h.authService.ClearSessionCookie(w)
	http.Redirect(w, r, "/auth/sign-in", http.StatusSeeOther)
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	api.JSON(w, http.StatusOK, user)
}
