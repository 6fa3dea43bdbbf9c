package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/model"
	"github.com/pwalczk/contactbook/internal/repository"
)

// compile-time check that *DB implements repository.AccountRepository
var _ repository.AccountRepository = (*DB)(nil)

const accountColumns = `id, email, password_hash, subscription, session_token,
	avatar_url, verified, verification_token, created_at, updated_at`

// Create inserts a new account. The caller supplies email, password hash,
// subscription, avatar URL and verification token; ID and timestamps are
// assigned here. A duplicate email violates the UNIQUE constraint and is
// returned as a wrapped driver error — the service pre-checks the email and
// maps duplicates to a conflict before reaching this point.
func (db *DB) Create(ctx context.Context, account *model.Account) error {
	now := time.Now()
	account.ID = xid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, subscription, session_token,
			avatar_url, verified, verification_token, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Subscription,
		account.SessionToken,
		account.AvatarURL,
		account.Verified,
		account.VerificationToken,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting account (email=%s): %w", account.Email, err)
	}

	return nil
}

// GetByID retrieves an account by its internal ID.
// Returns apperror.ErrNotFound if no account exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return db.getAccount(ctx, "id", id)
}

// GetByEmail retrieves an account by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return db.getAccount(ctx, "email", email)
}

// GetBySessionToken retrieves the account whose current session token
// matches. An empty token never matches — logged-out accounts store the
// empty string and must not be resolvable this way.
func (db *DB) GetBySessionToken(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, apperror.NotFound("account", "(empty session token)")
	}
	return db.getAccount(ctx, "session_token", token)
}

// GetByVerificationToken retrieves the account holding the given one-time
// verification token. Consumed tokens are cleared to the empty string, so a
// second lookup with the same token correctly finds nothing.
func (db *DB) GetByVerificationToken(ctx context.Context, token string) (*model.Account, error) {
	if token == "" {
		return nil, apperror.NotFound("account", "(empty verification token)")
	}
	return db.getAccount(ctx, "verification_token", token)
}

func (db *DB) getAccount(ctx context.Context, column, value string) (*model.Account, error) {
	var a model.Account

	// column is always one of the fixed names above, never user input.
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s = ?`, accountColumns, column)

	err := db.conn.QueryRowContext(ctx, query, value).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Subscription,
		&a.SessionToken,
		&a.AvatarURL,
		&a.Verified,
		&a.VerificationToken,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("account", value)
		}
		return nil, fmt.Errorf("sqlite: getting account by %s: %w", column, err)
	}

	return &a, nil
}

// UpdateSessionToken sets the account's current session token.
// Pass "" to clear it on logout.
func (db *DB) UpdateSessionToken(ctx context.Context, id, token string) error {
	return db.updateAccount(ctx, id,
		`UPDATE accounts SET session_token = ?, updated_at = ? WHERE id = ?`,
		token, time.Now(), id)
}

// MarkVerified flips verified to true and clears the verification token.
// Both fields change in one UPDATE so no observer can see an account that is
// verified but still holds a token, or vice versa.
func (db *DB) MarkVerified(ctx context.Context, id string) error {
	return db.updateAccount(ctx, id,
		`UPDATE accounts SET verified = 1, verification_token = '', updated_at = ? WHERE id = ?`,
		time.Now(), id)
}

// UpdateAvatarURL points the account at a newly processed avatar.
func (db *DB) UpdateAvatarURL(ctx context.Context, id, url string) error {
	return db.updateAccount(ctx, id,
		`UPDATE accounts SET avatar_url = ?, updated_at = ? WHERE id = ?`,
		url, time.Now(), id)
}

// updateAccount runs a single-row UPDATE and translates "no row changed"
// into ErrNotFound.
func (db *DB) updateAccount(ctx context.Context, id, query string, args ...any) error {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating account %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of account %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("account", id)
	}

	return nil
}
