package models

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account in the directory.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	PasswordHash   string     `json:"-"` // Never expose this to the client
	DisplayName    string     `json:"displayName"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	Role           string     `json:"role"`
	IsBanned       bool       `json:"isBanned"`
	BanExpiration  *time.Time `json:"banExpiration,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
