package models

import "time"

// Message is a directed, timestamped text unit between two users.
// A message starts unread and flips to read exactly once; read is terminal.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsRead      bool      `json:"isRead"`

	// Sender projection, populated on conversation listings.
	SenderDisplayName    string `json:"senderDisplayName,omitempty"`
	SenderProfilePicture string `json:"senderProfilePicture,omitempty"`
	SenderRole           string `json:"senderRole,omitempty"`
}
