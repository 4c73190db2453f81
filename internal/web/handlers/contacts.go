package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/database"
)

// maxBodyBytes caps request bodies for contact writes
const maxBodyBytes = 64 << 10

type createContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type updateContactResponse struct {
	RowsAffected int64             `json:"rows_affected"`
	Contact      *database.Contact `json:"contact"`
}

// ListContacts returns every contact
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		h.storageError(w, err, "list contacts")
		return
	}
	h.jsonResponse(w, contacts, http.StatusOK)
}

// CreateContact adds a contact and returns it with its ID
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Debug().Err(err).Msg("Failed to parse contact")
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	contact, err := h.contacts.Add(r.Context(), req.FirstName, req.LastName, req.Phone, req.Email)
	if err != nil {
		h.storageError(w, err, "add contact")
		return
	}

	log.Info().Int64("id", contact.ID).Msg("Contact created")
	w.Header().Set("Location", "/api/contacts/"+strconv.FormatInt(contact.ID, 10))
	h.jsonResponse(w, contact, http.StatusCreated)
}

// GetContact returns a single contact
func (h *Handlers) GetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	contact, err := h.contacts.Find(r.Context(), id)
	if err != nil {
		h.storageError(w, err, "get contact")
		return
	}
	h.jsonResponse(w, contact, http.StatusOK)
}

// UpdateContact applies a partial update. Absent or null fields are left
// unchanged; a string, including "", is written.
func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	var changes database.ContactChanges
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&changes); err != nil {
		log.Debug().Err(err).Msg("Failed to parse contact changes")
		h.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rows, err := h.contacts.Update(r.Context(), id, changes)
	if err != nil {
		h.storageError(w, err, "update contact")
		return
	}

	// Zero rows does not mean missing on MySQL, so look the contact up
	contact, err := h.contacts.Find(r.Context(), id)
	if err != nil {
		h.storageError(w, err, "get contact")
		return
	}

	if rows > 0 {
		log.Info().Int64("id", id).Msg("Contact updated")
	}
	h.jsonResponse(w, updateContactResponse{RowsAffected: rows, Contact: contact}, http.StatusOK)
}

// DeleteContact removes a contact
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.contactID(w, r)
	if !ok {
		return
	}

	rows, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		h.storageError(w, err, "delete contact")
		return
	}
	if rows == 0 {
		h.jsonError(w, "Contact not found", http.StatusNotFound)
		return
	}

	log.Info().Int64("id", id).Msg("Contact deleted")
	h.jsonSuccess(w, "Contact deleted")
}

// contactID parses the {id} URL parameter, writing a 400 when it is not a number
func (h *Handlers) contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.jsonError(w, "Invalid contact ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
