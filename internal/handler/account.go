package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/auth"
	"github.com/pwalczk/contactbook/internal/service"
)

// AccountHandler is the HTTP boundary for account operations.
//
//	POST  /api/users/signup          → register, send verification email
//	POST  /api/users/login           → issue session token
//	GET   /api/users/logout          → clear session (auth)
//	GET   /api/users/current         → authenticated account (auth)
//	PATCH /api/users/avatars         → upload avatar (auth)
//	GET   /api/users/verify/{token}  → confirm verification
//	POST  /api/users/verify          → resend verification email
type AccountHandler struct {
	accounts       *service.AccountService
	maxAvatarBytes int64
	logger         *slog.Logger
}

// NewAccountHandler creates an AccountHandler. maxAvatarBytes bounds avatar
// uploads before any processing happens.
func NewAccountHandler(accounts *service.AccountService, maxAvatarBytes int64, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:       accounts,
		maxAvatarBytes: maxAvatarBytes,
		logger:         logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/users/signup
// Body: {"email": "...", "password": "..."}
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	account, err := h.accounts.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("signup failed",
			slog.String("email", req.Email),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// HandleLogin authenticates and returns a session token.
//
// HTTP: POST /api/users/login
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// HandleLogout clears the current session.
//
// HTTP: GET /api/users/logout (auth required)
func (h *AccountHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	if err := h.accounts.Logout(r.Context(), account.ID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCurrent returns the authenticated account.
//
// HTTP: GET /api/users/current (auth required)
func (h *AccountHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// HandleAvatar accepts a multipart upload in the "avatar" field, runs the
// avatar pipeline and returns the new URL.
//
// HTTP: PATCH /api/users/avatars (auth required)
//
// The body is capped with MaxBytesReader before any parsing, so an
// oversized upload is rejected without ever touching the image pipeline.
func (h *AccountHandler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes)
	if err := r.ParseMultipartForm(h.maxAvatarBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, apperror.ValidationFailed("avatar", "uploaded file is too large"))
			return
		}
		writeError(w, apperror.ValidationFailed("avatar", "expected multipart form with an avatar field"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, apperror.ValidationFailed("avatar", "avatar file field is required"))
		return
	}
	defer file.Close()

	url, err := h.accounts.UpdateAvatar(r.Context(), account, header.Filename, file)
	if err != nil {
		h.logger.Error("avatar update failed",
			slog.String("accountID", account.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"avatarURL": url})
}

// HandleVerifyToken consumes a verification token from the confirmation
// link.
//
// HTTP: GET /api/users/verify/{token}
func (h *AccountHandler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		writeError(w, apperror.NotFound("account", "with that verification token"))
		return
	}

	if err := h.accounts.ConfirmVerification(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification successful"})
}

// HandleResendVerification re-sends the verification email.
//
// HTTP: POST /api/users/verify
// Body: {"email": "..."}
func (h *AccountHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if err := h.accounts.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification email sent"})
}
