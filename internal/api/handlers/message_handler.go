package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/miguelsv/chatline-be/internal/models"
	"github.com/miguelsv/chatline-be/internal/services"
	"github.com/rs/zerolog/log"
)

// MessageHandler handles HTTP requests for direct messages.
type MessageHandler struct {
	service services.MessageServiceProvider
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(service services.MessageServiceProvider) *MessageHandler {
	return &MessageHandler{service: service}
}

// SendPayload defines the structure for send requests.
type SendPayload struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// MarkReadPayload defines the structure for mark-read requests.
type MarkReadPayload struct {
	UserID    string `json:"userId"`
	ContactID string `json:"contactId"`
}

// Send handles appending a new message.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var payload SendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}

	message, err := h.service.Send(payload.SenderID, payload.RecipientID, payload.Content)
	if err != nil {
		log.Warn().Err(err).Str("sender_id", payload.SenderID).Msg("Failed to send message")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// List handles retrieving the conversation between two users.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	contactID := r.URL.Query().Get("contactId")

	messages, err := h.service.ListBetween(userID, contactID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to list messages")
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{} // encode as empty array, not null
	}
	writeJSON(w, http.StatusOK, messages)
}

// MarkRead flips the unread messages from a contact and reports the count.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var payload MarkReadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}

	updated, err := h.service.MarkRead(payload.UserID, payload.ContactID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", payload.UserID).Msg("Failed to mark messages read")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
