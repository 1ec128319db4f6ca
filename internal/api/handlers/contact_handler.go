package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/miguelsv/chatline-be/internal/models"
	"github.com/miguelsv/chatline-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ContactHandler handles HTTP requests for the contact graph.
type ContactHandler struct {
	service services.ContactServiceProvider
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service services.ContactServiceProvider) *ContactHandler {
	return &ContactHandler{service: service}
}

// AddContactPayload defines the structure for add-contact requests. The
// contact can be referenced by id or username.
type AddContactPayload struct {
	UserID    string `json:"userId"`
	ContactID string `json:"contactId"`
}

// Add handles adding a contact edge.
func (h *ContactHandler) Add(w http.ResponseWriter, r *http.Request) {
	var payload AddContactPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}

	contact, err := h.service.AddContact(payload.UserID, payload.ContactID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", payload.UserID).Msg("Failed to add contact")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contact)
}

// List handles retrieving a user's contact list with unread counts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	contacts, err := h.service.ListContacts(userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to list contacts")
		writeError(w, err)
		return
	}
	if contacts == nil {
		contacts = []models.ContactView{} // encode as empty array, not null
	}
	writeJSON(w, http.StatusOK, contacts)
}
