// Package service holds the business rules, between the HTTP handlers and
// the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/auth"
	"github.com/pwalczk/contactbook/internal/avatar"
	"github.com/pwalczk/contactbook/internal/mail"
	"github.com/pwalczk/contactbook/internal/model"
	"github.com/pwalczk/contactbook/internal/repository"
)

// AccountService orchestrates signup, login/logout, email verification and
// avatar updates.
//
// Dependencies (injected via NewAccountService):
//   - accounts  repository.AccountRepository → persistence
//   - passwords *auth.PasswordService        → bcrypt hashing
//   - tokens    *auth.TokenService           → session JWTs
//   - mailer    mail.Mailer                  → outbound verification email
//   - avatars   *avatar.Pipeline             → image ingestion
type AccountService struct {
	accounts  repository.AccountRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	mailer    mail.Mailer
	avatars   *avatar.Pipeline
	baseURL   string
	logger    *slog.Logger
}

// NewAccountService creates an AccountService with all required dependencies.
func NewAccountService(
	accounts repository.AccountRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	mailer mail.Mailer,
	avatars *avatar.Pipeline,
	baseURL string,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		passwords: passwords,
		tokens:    tokens,
		mailer:    mailer,
		avatars:   avatars,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Signup registers a new account and sends the verification email.
//
// The account starts unverified, holding a fresh one-time verification token
// and a gravatar-derived default avatar so the avatar URL is never empty.
// A duplicate email is a conflict; the accounts table additionally enforces
// uniqueness, so a racing duplicate insert fails there.
func (s *AccountService) Signup(ctx context.Context, email, password string) (*model.Account, error) {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return nil, apperror.ValidationFailed("email", "a valid email is required")
	}
	if err := validation.Validate(password, validation.Required, validation.Length(6, 72)); err != nil {
		return nil, apperror.ValidationFailed("password", "password must be between 6 and 72 characters")
	}

	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("account", "email in use")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/account: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	account := &model.Account{
		Email:             email,
		PasswordHash:      hash,
		Subscription:      model.SubscriptionStarter,
		AvatarURL:         avatar.GravatarURL(email),
		Verified:          false,
		VerificationToken: uuid.NewString(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("service/account: creating account: %w", err)
	}

	s.logger.Info("account created",
		slog.String("accountID", account.ID),
		slog.String("email", account.Email),
	)

	if err := s.sendVerification(ctx, account.Email, account.VerificationToken); err != nil {
		return nil, err
	}

	return account, nil
}

// Login checks the credentials and, on success, issues a session token and
// records it as the account's current session.
//
// Wrong email and wrong password produce the same error so the response
// doesn't reveal which one was wrong.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperror.ValidationFailed("credentials", "email and password are required")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.Unauthorized("email or password is wrong")
		}
		return "", fmt.Errorf("service/account: looking up %s: %w", email, err)
	}

	if err := s.passwords.Verify(account.PasswordHash, password); err != nil {
		return "", apperror.Unauthorized("email or password is wrong")
	}

	token, err := s.tokens.Generate(account.ID)
	if err != nil {
		return "", fmt.Errorf("service/account: generating token for %s: %w", account.ID, err)
	}

	if err := s.accounts.UpdateSessionToken(ctx, account.ID, token); err != nil {
		return "", fmt.Errorf("service/account: storing session token for %s: %w", account.ID, err)
	}

	return token, nil
}

// Logout clears the account's session token. The JWT itself stays signed
// and unexpired, but the auth middleware's session check rejects it from
// now on.
func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	if err := s.accounts.UpdateSessionToken(ctx, accountID, ""); err != nil {
		return fmt.Errorf("service/account: clearing session for %s: %w", accountID, err)
	}
	return nil
}

// ConfirmVerification consumes a one-time verification token.
//
// The lookup and the update together make confirmation single-shot: marking
// the account verified clears the token in the same statement, so a second
// confirmation with the same token finds no account and reports not found.
func (s *AccountService) ConfirmVerification(ctx context.Context, token string) error {
	account, err := s.accounts.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("account", "with that verification token")
		}
		return fmt.Errorf("service/account: looking up verification token: %w", err)
	}

	if err := s.accounts.MarkVerified(ctx, account.ID); err != nil {
		return fmt.Errorf("service/account: marking %s verified: %w", account.ID, err)
	}

	s.logger.Info("account verified", slog.String("accountID", account.ID))
	return nil
}

// ResendVerification re-sends the verification email for an unverified
// account. Already-verified accounts are a validation error; an unknown
// email is reported as unauthorized.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return apperror.ValidationFailed("email", "a valid email is required")
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Unauthorized("email not registered")
		}
		return fmt.Errorf("service/account: looking up %s: %w", email, err)
	}

	if account.Verified {
		return apperror.ValidationFailed("email", "verification has already been passed")
	}

	return s.sendVerification(ctx, account.Email, account.VerificationToken)
}

// UpdateAvatar runs the avatar pipeline for the account and records the new
// URL. If the record update fails after the file was promoted, the promoted
// file is deleted again so no unreferenced avatar is left behind. The
// previous avatar file, if this pipeline produced it, is garbage-collected
// after a successful swap.
func (s *AccountService) UpdateAvatar(ctx context.Context, account *model.Account, originalName string, payload io.Reader) (string, error) {
	stored, err := s.avatars.Process(account.ID, originalName, payload)
	if err != nil {
		return "", err
	}

	if err := s.accounts.UpdateAvatarURL(ctx, account.ID, stored.URL); err != nil {
		s.avatars.Discard(stored)
		return "", fmt.Errorf("service/account: storing avatar URL for %s: %w", account.ID, err)
	}

	s.avatars.RemoveStored(account.AvatarURL)

	s.logger.Info("avatar updated",
		slog.String("accountID", account.ID),
		slog.String("avatarURL", stored.URL),
	)

	return stored.URL, nil
}

// GetByID returns the account for the given internal ID.
func (s *AccountService) GetByID(ctx context.Context, id string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/account: fetching %s: %w", id, err)
	}
	return account, nil
}

// sendVerification mails the confirmation link for the given token. A
// failed send surfaces as a server error at the boundary — the account
// state is untouched and the caller may retry via the resend endpoint.
func (s *AccountService) sendVerification(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/api/users/verify/%s", s.baseURL, token)
	msg := mail.Message{
		To:      email,
		Subject: "Verification email",
		HTML:    fmt.Sprintf(`<a target="_blank" href=%q>Click to confirm registration</a>`, link),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("service/account: sending verification email to %s: %w", email, err)
	}

	return nil
}
