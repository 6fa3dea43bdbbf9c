package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/model"
)

func createTestContact(t *testing.T, db *DB, ownerID, name string) *model.Contact {
	t.Helper()
	contact := &model.Contact{
		OwnerID: ownerID,
		Name:    name,
		Email:   name + "@example.com",
		Phone:   "555-0100",
	}
	if err := db.CreateContact(context.Background(), contact); err != nil {
		t.Fatalf("failed to create test contact: %v", err)
	}
	return contact
}

func TestContactCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	owner := createTestAccount(t, db, "owner@example.com")

	created := createTestContact(t, db, owner.ID, "alice")
	if created.ID == "" {
		t.Fatal("CreateContact() did not set ID")
	}

	found, err := db.GetContact(context.Background(), owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetContact() error = %v", err)
	}
	if found.Name != "alice" || found.Phone != "555-0100" {
		t.Errorf("GetContact() = %+v, want alice/555-0100", found)
	}
}

func TestContactGet_OtherOwnerIsNotFound(t *testing.T) {
	db := newTestDB(t)
	ownerA := createTestAccount(t, db, "a@example.com")
	ownerB := createTestAccount(t, db, "b@example.com")

	contact := createTestContact(t, db, ownerA.ID, "private")

	// Owner B must not be able to see A's contact, and must not be able to
	// tell it exists.
	_, err := db.GetContact(context.Background(), ownerB.ID, contact.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetContact() across owners = %v, want ErrNotFound", err)
	}
}

func TestContactList_ScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	ownerA := createTestAccount(t, db, "lista@example.com")
	ownerB := createTestAccount(t, db, "listb@example.com")

	createTestContact(t, db, ownerA.ID, "one")
	createTestContact(t, db, ownerA.ID, "two")
	createTestContact(t, db, ownerB.ID, "other")

	contacts, err := db.ListContacts(context.Background(), ownerA.ID)
	if err != nil {
		t.Fatalf("ListContacts() error = %v", err)
	}
	if len(contacts) != 2 {
		t.Fatalf("ListContacts() returned %d contacts, want 2", len(contacts))
	}
	for _, c := range contacts {
		if c.OwnerID != ownerA.ID {
			t.Errorf("contact %s has owner %s, want %s", c.ID, c.OwnerID, ownerA.ID)
		}
	}
}

func TestContactUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := createTestAccount(t, db, "upd@example.com")
	contact := createTestContact(t, db, owner.ID, "before")

	contact.Name = "after"
	contact.Favorite = true
	if err := db.UpdateContact(context.Background(), contact); err != nil {
		t.Fatalf("UpdateContact() error = %v", err)
	}

	found, err := db.GetContact(context.Background(), owner.ID, contact.ID)
	if err != nil {
		t.Fatalf("GetContact() error = %v", err)
	}
	if found.Name != "after" || !found.Favorite {
		t.Errorf("UpdateContact() persisted %+v, want name=after favorite=true", found)
	}
}

func TestContactDelete(t *testing.T) {
	db := newTestDB(t)
	owner := createTestAccount(t, db, "del@example.com")
	contact := createTestContact(t, db, owner.ID, "victim")
	ctx := context.Background()

	if err := db.DeleteContact(ctx, owner.ID, contact.ID); err != nil {
		t.Fatalf("DeleteContact() error = %v", err)
	}

	if _, err := db.GetContact(ctx, owner.ID, contact.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetContact() after delete = %v, want ErrNotFound", err)
	}

	// Deleting again is a not-found, not a silent success.
	if err := db.DeleteContact(ctx, owner.ID, contact.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteContact() twice = %v, want ErrNotFound", err)
	}
}
