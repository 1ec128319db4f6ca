package models

import "time"

// Contact is a directed "has added" edge between two users.
type Contact struct {
	UserID    string    `json:"userId"`
	ContactID string    `json:"contactId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactView is one contact-list entry: the target user's public fields
// plus the number of their messages the owner has not read yet.
type ContactView struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	UnreadCount    int    `json:"unreadCount"`
}
