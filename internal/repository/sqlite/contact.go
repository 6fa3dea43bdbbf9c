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

var _ repository.ContactRepository = (*DB)(nil)

// CreateContact inserts a new contact for its owner. ID and timestamps are
// assigned in place.
func (db *DB) CreateContact(ctx context.Context, contact *model.Contact) error {
	now := time.Now()
	contact.ID = xid.New().String()
	contact.CreatedAt = now
	contact.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO contacts (id, owner_id, name, email, phone, favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Favorite,
		contact.CreatedAt,
		contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting contact for owner %s: %w", contact.OwnerID, err)
	}

	return nil
}

// GetContact retrieves one of ownerID's contacts by ID. A contact belonging
// to a different account is reported as not found, not as forbidden — the
// caller learns nothing about other accounts' data.
func (db *DB) GetContact(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	var c model.Contact

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, owner_id, name, email, phone, favorite, created_at, updated_at
		 FROM contacts WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.Favorite,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("contact", id)
		}
		return nil, fmt.Errorf("sqlite: getting contact %s: %w", id, err)
	}

	return &c, nil
}

// ListContacts returns all of ownerID's contacts, newest first.
func (db *DB) ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, owner_id, name, email, phone, favorite, created_at, updated_at
		 FROM contacts WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing contacts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	contacts := []model.Contact{}
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.Name,
			&c.Email,
			&c.Phone,
			&c.Favorite,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating contacts: %w", err)
	}

	return contacts, nil
}

// UpdateContact overwrites the mutable fields of an existing contact.
func (db *DB) UpdateContact(ctx context.Context, contact *model.Contact) error {
	contact.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE contacts SET name = ?, email = ?, phone = ?, favorite = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Favorite,
		contact.UpdatedAt,
		contact.ID,
		contact.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating contact %s: %w", contact.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking update of contact %s: %w", contact.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("contact", contact.ID)
	}

	return nil
}

// DeleteContact removes one of ownerID's contacts.
func (db *DB) DeleteContact(ctx context.Context, ownerID, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting contact %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of contact %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("contact", id)
	}

	return nil
}
