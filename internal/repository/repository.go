package repository

import (
	"context"

	"github.com/pwalczk/contactbook/internal/model"
)

// AccountRepository is the persistence surface for accounts.
//
// Lookups return apperror.ErrNotFound (wrapped) when no row matches; callers
// decide whether absence is an error on their path. All updates are single-row
// statements — the store never needs multi-record transactions.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetBySessionToken(ctx context.Context, token string) (*model.Account, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.Account, error)

	// UpdateSessionToken sets the account's current session token.
	// An empty token clears it (logout).
	UpdateSessionToken(ctx context.Context, id, token string) error

	// MarkVerified flips verified to true and clears the verification token
	// in a single atomic update.
	MarkVerified(ctx context.Context, id string) error

	UpdateAvatarURL(ctx context.Context, id, url string) error
}

// ContactRepository is the persistence surface for an account's contacts.
type ContactRepository interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
	GetContact(ctx context.Context, ownerID, id string) (*model.Contact, error)
	ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error)
	UpdateContact(ctx context.Context, contact *model.Contact) error
	DeleteContact(ctx context.Context, ownerID, id string) error
}
