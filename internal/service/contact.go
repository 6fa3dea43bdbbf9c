package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/model"
	"github.com/pwalczk/contactbook/internal/repository"
)

// ContactService applies the (thin) rules for contact records. Contacts are
// always scoped to the authenticated owner; the repository enforces the
// scoping on every query.
type ContactService struct {
	contacts repository.ContactRepository
	logger   *slog.Logger
}

func NewContactService(contacts repository.ContactRepository, logger *slog.Logger) *ContactService {
	return &ContactService{contacts: contacts, logger: logger}
}

// ContactInput carries the client-supplied contact fields.
type ContactInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite bool   `json:"favorite"`
}

func (in ContactInput) validate() error {
	if err := validation.Validate(in.Name, validation.Required, validation.Length(1, 200)); err != nil {
		return apperror.ValidationFailed("name", "name is required")
	}
	if in.Email != "" {
		if err := validation.Validate(in.Email, is.Email); err != nil {
			return apperror.ValidationFailed("email", "email must be a valid address")
		}
	}
	return nil
}

// Create adds a contact to ownerID's list.
func (s *ContactService) Create(ctx context.Context, ownerID string, in ContactInput) (*model.Contact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	contact := &model.Contact{
		OwnerID:  ownerID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Favorite: in.Favorite,
	}

	if err := s.contacts.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("service/contact: creating contact: %w", err)
	}

	return contact, nil
}

// Get returns one of ownerID's contacts.
func (s *ContactService) Get(ctx context.Context, ownerID, id string) (*model.Contact, error) {
	contact, err := s.contacts.GetContact(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("service/contact: fetching %s: %w", id, err)
	}
	return contact, nil
}

// List returns all of ownerID's contacts.
func (s *ContactService) List(ctx context.Context, ownerID string) ([]model.Contact, error) {
	contacts, err := s.contacts.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/contact: listing: %w", err)
	}
	return contacts, nil
}

// Update replaces the mutable fields of an existing contact.
func (s *ContactService) Update(ctx context.Context, ownerID, id string, in ContactInput) (*model.Contact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	contact := &model.Contact{
		ID:       id,
		OwnerID:  ownerID,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Favorite: in.Favorite,
	}

	if err := s.contacts.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("service/contact: updating %s: %w", id, err)
	}

	return s.contacts.GetContact(ctx, ownerID, id)
}

// SetFavorite flips just the favorite flag.
func (s *ContactService) SetFavorite(ctx context.Context, ownerID, id string, favorite bool) (*model.Contact, error) {
	contact, err := s.contacts.GetContact(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("service/contact: fetching %s: %w", id, err)
	}

	contact.Favorite = favorite
	if err := s.contacts.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("service/contact: updating favorite on %s: %w", id, err)
	}

	return contact, nil
}

// Delete removes one of ownerID's contacts.
func (s *ContactService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.contacts.DeleteContact(ctx, ownerID, id); err != nil {
		return fmt.Errorf("service/contact: deleting %s: %w", id, err)
	}
	s.logger.Info("contact deleted", slog.String("contactID", id), slog.String("ownerID", ownerID))
	return nil
}
