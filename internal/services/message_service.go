package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/miguelsv/chatline-be/internal/models"
)

// MessageServiceProvider defines the interface for the message store.
type MessageServiceProvider interface {
	Send(senderID, recipientID, content string) (models.Message, error)
	ListBetween(userID, contactID string) ([]models.Message, error)
	MarkRead(userID, contactID string) (int64, error)
}

// MessageService provides business logic for direct messages.
type MessageService struct {
	db    *sql.DB
	users UserServiceProvider
}

// NewMessageService creates a new MessageService. The user service is used
// for the moderation checks on send.
func NewMessageService(db *sql.DB, users UserServiceProvider) *MessageService {
	return &MessageService{db: db, users: users}
}

// Send appends a message to the log. Fails when either party's ban is
// active; the ban check also lazily clears expired bans.
func (s *MessageService) Send(senderID, recipientID, content string) (models.Message, error) {
	if senderID == "" || recipientID == "" || content == "" {
		return models.Message{}, fmt.Errorf("%w: senderId, recipientId and content are required", ErrInvalidInput)
	}

	senderBanned, err := s.users.IsBanned(senderID)
	if err != nil {
		return models.Message{}, err
	}
	if senderBanned {
		return models.Message{}, fmt.Errorf("%w: sender is banned", ErrForbidden)
	}

	recipientBanned, err := s.users.IsBanned(recipientID)
	if err != nil {
		return models.Message{}, err
	}
	if recipientBanned {
		return models.Message{}, fmt.Errorf("%w: recipient is banned", ErrForbidden)
	}

	message := models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		Timestamp:   time.Now().UTC(),
	}

	res, err := s.db.Exec("INSERT INTO messages(sender_id, recipient_id, content, created_at, is_read) VALUES(?, ?, ?, ?, 0)",
		message.SenderID, message.RecipientID, message.Content, message.Timestamp)
	if err != nil {
		return models.Message{}, err
	}
	message.ID, err = res.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// ListBetween returns both directions of the conversation between two
// users, oldest first. Timestamps may collide at sub-second granularity,
// so the insertion id breaks ties. Each row carries the sender projection.
func (s *MessageService) ListBetween(userID, contactID string) ([]models.Message, error) {
	if userID == "" || contactID == "" {
		return nil, fmt.Errorf("%w: userId and contactId are required", ErrInvalidInput)
	}

	rows, err := s.db.Query(`
		SELECT m.id, m.sender_id, m.recipient_id, m.content, m.created_at, m.is_read,
		       u.display_name, COALESCE(u.profile_picture, ''), u.role
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = ? AND m.recipient_id = ?) OR (m.sender_id = ? AND m.recipient_id = ?)
		ORDER BY m.created_at, m.id`,
		userID, contactID, contactID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.Timestamp, &m.IsRead,
			&m.SenderDisplayName, &m.SenderProfilePicture, &m.SenderRole); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkRead flips every unread message from the contact to the user to
// read and returns how many rows changed. Zero is a valid result; the
// operation is idempotent.
func (s *MessageService) MarkRead(userID, contactID string) (int64, error) {
	if userID == "" || contactID == "" {
		return 0, fmt.Errorf("%w: userId and contactId are required", ErrInvalidInput)
	}

	res, err := s.db.Exec("UPDATE messages SET is_read = 1 WHERE recipient_id = ? AND sender_id = ? AND is_read = 0",
		userID, contactID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
