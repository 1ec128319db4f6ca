package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/miguelsv/chatline-be/internal/models"
)

// ContactServiceProvider defines the interface for contact graph services.
type ContactServiceProvider interface {
	AddContact(userID, contact string) (models.Contact, error)
	ListContacts(userID string) ([]models.ContactView, error)
}

// ContactService provides business logic for the contact graph. Edges are
// directed; adding a contact never creates the reverse edge.
type ContactService struct {
	db *sql.DB
}

// NewContactService creates a new ContactService.
func NewContactService(db *sql.DB) *ContactService {
	return &ContactService{db: db}
}

// AddContact resolves the target by id or username and records the edge.
// The insert is idempotent: adding an existing contact returns the stored
// edge unchanged. Resolution and insert run in one transaction.
func (s *ContactService) AddContact(userID, contact string) (models.Contact, error) {
	if userID == "" || contact == "" {
		return models.Contact{}, fmt.Errorf("%w: userId and contactId are required", ErrInvalidInput)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Contact{}, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow("SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return models.Contact{}, err
	}

	var contactID string
	err = tx.QueryRow("SELECT id FROM users WHERE id = ? OR username = ?", contact, contact).Scan(&contactID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Contact{}, fmt.Errorf("%w: contact %s", ErrNotFound, contact)
		}
		return models.Contact{}, err
	}
	if contactID == userID {
		return models.Contact{}, fmt.Errorf("%w: cannot add yourself as a contact", ErrInvalidInput)
	}

	_, err = tx.Exec("INSERT INTO contacts(user_id, contact_id, created_at) VALUES(?, ?, ?) ON CONFLICT(user_id, contact_id) DO NOTHING",
		userID, contactID, time.Now().UTC())
	if err != nil {
		return models.Contact{}, err
	}

	var edge models.Contact
	row := tx.QueryRow("SELECT user_id, contact_id, created_at FROM contacts WHERE user_id = ? AND contact_id = ?", userID, contactID)
	if err := row.Scan(&edge.UserID, &edge.ContactID, &edge.CreatedAt); err != nil {
		return models.Contact{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Contact{}, err
	}
	return edge, nil
}

// ListContacts returns the user's contacts joined with each target's public
// fields and their unread message count towards the user. Ordered by
// contact id for a stable listing.
func (s *ContactService) ListContacts(userID string) ([]models.ContactView, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	var exists int
	if err := s.db.QueryRow("SELECT 1 FROM users WHERE id = ?", userID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT u.id, u.username, u.display_name, COALESCE(u.profile_picture, ''),
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.recipient_id = c.user_id AND m.sender_id = u.id AND m.is_read = 0) AS unread_count
		FROM contacts c
		JOIN users u ON u.id = c.contact_id
		WHERE c.user_id = ?
		ORDER BY u.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []models.ContactView
	for rows.Next() {
		var view models.ContactView
		if err := rows.Scan(&view.ID, &view.Username, &view.DisplayName, &view.ProfilePicture, &view.UnreadCount); err != nil {
			return nil, err
		}
		contacts = append(contacts, view)
	}
	return contacts, rows.Err()
}
