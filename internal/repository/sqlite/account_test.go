package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite database that lives
// only for the duration of the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestAccount creates an unverified account with a verification token,
// the shape signup produces.
func createTestAccount(t *testing.T, db *DB, email string) *model.Account {
	t.Helper()
	account := &model.Account{
		Email:             email,
		PasswordHash:      "$2a$04$fakehashfakehashfakehash",
		Subscription:      model.SubscriptionStarter,
		AvatarURL:         "https://www.gravatar.com/avatar/abc?d=identicon",
		VerificationToken: "verify-" + email,
	}
	if err := db.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

func TestAccountCreate(t *testing.T) {
	db := newTestDB(t)

	account := &model.Account{
		Email:             "new@example.com",
		PasswordHash:      "hash",
		Subscription:      model.SubscriptionStarter,
		VerificationToken: "tok-1",
	}

	if err := db.Create(context.Background(), account); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if account.ID == "" {
		t.Error("Create() did not set account.ID")
	}
	if account.CreatedAt.IsZero() {
		t.Error("Create() did not set account.CreatedAt")
	}
}

func TestAccountCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	createTestAccount(t, db, "dup@example.com")

	duplicate := &model.Account{
		Email:             "dup@example.com",
		PasswordHash:      "other-hash",
		VerificationToken: "tok-2",
	}
	if err := db.Create(context.Background(), duplicate); err == nil {
		t.Fatal("Create() should have returned an error for a duplicate email")
	}
}

func TestAccountGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestAccount(t, db, "byid@example.com")

	found, err := db.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Email != "byid@example.com" {
		t.Errorf("Email = %q, want %q", found.Email, "byid@example.com")
	}
	if found.Verified {
		t.Error("new account should be unverified")
	}
	if found.Subscription != model.SubscriptionStarter {
		t.Errorf("Subscription = %q, want starter", found.Subscription)
	}
}

func TestAccountGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestAccountGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestAccount(t, db, "byemail@example.com")

	found, err := db.GetByEmail(context.Background(), "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}

	if _, err := db.GetByEmail(context.Background(), "missing@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() for missing email = %v, want ErrNotFound", err)
	}
}

func TestAccountSessionTokenLifecycle(t *testing.T) {
	db := newTestDB(t)
	account := createTestAccount(t, db, "session@example.com")
	ctx := context.Background()

	// Login: store a session token and find the account through it.
	if err := db.UpdateSessionToken(ctx, account.ID, "session-token-xyz"); err != nil {
		t.Fatalf("UpdateSessionToken() error = %v", err)
	}

	found, err := db.GetBySessionToken(ctx, "session-token-xyz")
	if err != nil {
		t.Fatalf("GetBySessionToken() error = %v", err)
	}
	if found.ID != account.ID {
		t.Errorf("ID = %q, want %q", found.ID, account.ID)
	}

	// Logout: clear the token; neither the old value nor the empty string
	// may resolve the account anymore.
	if err := db.UpdateSessionToken(ctx, account.ID, ""); err != nil {
		t.Fatalf("UpdateSessionToken(clear) error = %v", err)
	}

	if _, err := db.GetBySessionToken(ctx, "session-token-xyz"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBySessionToken() after logout = %v, want ErrNotFound", err)
	}
	if _, err := db.GetBySessionToken(ctx, ""); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBySessionToken(\"\") = %v, want ErrNotFound", err)
	}
}

func TestAccountMarkVerified(t *testing.T) {
	db := newTestDB(t)
	account := createTestAccount(t, db, "verify@example.com")
	ctx := context.Background()

	found, err := db.GetByVerificationToken(ctx, account.VerificationToken)
	if err != nil {
		t.Fatalf("GetByVerificationToken() error = %v", err)
	}
	if found.ID != account.ID {
		t.Fatalf("ID = %q, want %q", found.ID, account.ID)
	}

	if err := db.MarkVerified(ctx, account.ID); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}

	// Verified flag and token clear must land together.
	after, err := db.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !after.Verified {
		t.Error("account should be verified")
	}
	if after.VerificationToken != "" {
		t.Errorf("VerificationToken = %q, want empty after verification", after.VerificationToken)
	}

	// The consumed token no longer resolves anything.
	if _, err := db.GetByVerificationToken(ctx, account.VerificationToken); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByVerificationToken() after consumption = %v, want ErrNotFound", err)
	}
}

func TestAccountUpdateAvatarURL(t *testing.T) {
	db := newTestDB(t)
	account := createTestAccount(t, db, "avatar@example.com")
	ctx := context.Background()

	if err := db.UpdateAvatarURL(ctx, account.ID, "avatars/acc_x_pic.png"); err != nil {
		t.Fatalf("UpdateAvatarURL() error = %v", err)
	}

	after, err := db.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if after.AvatarURL != "avatars/acc_x_pic.png" {
		t.Errorf("AvatarURL = %q, want %q", after.AvatarURL, "avatars/acc_x_pic.png")
	}
}

func TestAccountUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.UpdateSessionToken(ctx, "ghost", "tok"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateSessionToken() = %v, want ErrNotFound", err)
	}
	if err := db.MarkVerified(ctx, "ghost"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("MarkVerified() = %v, want ErrNotFound", err)
	}
	if err := db.UpdateAvatarURL(ctx, "ghost", "url"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateAvatarURL() = %v, want ErrNotFound", err)
	}
}
