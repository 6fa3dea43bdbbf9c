package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pwalczk/contactbook/internal/apperror"
	"github.com/pwalczk/contactbook/internal/auth"
	"github.com/pwalczk/contactbook/internal/service"
)

// ContactHandler serves the contact CRUD routes. All routes require
// authentication; the owner is always the account from the request context.
type ContactHandler struct {
	contacts *service.ContactService
	logger   *slog.Logger
}

func NewContactHandler(contacts *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

// HandleList returns all of the caller's contacts.
//
// HTTP: GET /api/contacts
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	contacts, err := h.contacts.List(r.Context(), account.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HandleGet returns a single contact.
//
// HTTP: GET /api/contacts/{id}
func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	contact, err := h.contacts.Get(r.Context(), account.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleCreate adds a contact.
//
// HTTP: POST /api/contacts
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	var in service.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	contact, err := h.contacts.Create(r.Context(), account.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

// HandleUpdate replaces a contact's fields.
//
// HTTP: PUT /api/contacts/{id}
func (h *ContactHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	var in service.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	contact, err := h.contacts.Update(r.Context(), account.ID, r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleFavorite updates only the favorite flag.
//
// HTTP: PATCH /api/contacts/{id}/favorite
// Body: {"favorite": true}
func (h *ContactHandler) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	var in struct {
		Favorite *bool `json:"favorite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Favorite == nil {
		writeError(w, apperror.ValidationFailed("favorite", "favorite field is required"))
		return
	}

	contact, err := h.contacts.SetFavorite(r.Context(), account.ID, r.PathValue("id"), *in.Favorite)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HandleDelete removes a contact.
//
// HTTP: DELETE /api/contacts/{id}
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("not authorized"))
		return
	}

	if err := h.contacts.Delete(r.Context(), account.ID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
