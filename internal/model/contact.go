package model

import "time"

// Contact is an address-book entry owned by a single account.
// Contacts have no lifecycle beyond plain CRUD plus a favorite flag.
type Contact struct {
	ID        string    `json:"id"        db:"id"`
	OwnerID   string    `json:"-"         db:"owner_id"`
	Name      string    `json:"name"      db:"name"`
	Email     string    `json:"email"     db:"email"`
	Phone     string    `json:"phone"     db:"phone"`
	Favorite  bool      `json:"favorite"  db:"favorite"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
