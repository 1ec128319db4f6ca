package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/miguelsv/chatline-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user directory services.
type UserServiceProvider interface {
	Register(username, password, displayName string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	ListUsers() ([]models.User, error)
	GetUserByID(id string) (models.User, error)
	UpdateProfile(id string, displayName, profilePicture *string) (models.User, error)
	SetBan(adminID, targetUsername string, durationMinutes *int) error
	Unban(adminID, targetUsername string) error
	IsBanned(id string) (bool, error)
}

// UserService provides business logic for the user directory.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

const publicUserColumns = `id, username, display_name, COALESCE(profile_picture, ''), role, is_banned, ban_expiration, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.ProfilePicture,
		&user.Role, &user.IsBanned, &user.BanExpiration, &user.CreatedAt)
	return user, err
}

// Register creates a new user, hashing their password. The display name
// defaults to the username when absent.
func (s *UserService) Register(username, password, displayName string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if displayName == "" {
		displayName = username
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:          uuid.New().String(),
		Username:    username,
		DisplayName: displayName,
		Role:        models.RoleUser,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow("SELECT 1 FROM users WHERE username = ?", username).Scan(&exists)
	if err == nil {
		return models.User{}, fmt.Errorf("%w: username %s is taken", ErrConflict, username)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, err
	}

	_, err = tx.Exec("INSERT INTO users(id, username, password_hash, display_name, role, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, string(hashedPassword), user.DisplayName, user.Role, user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials and returns the sanitized record.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	var hash string
	row := s.db.QueryRow("SELECT password_hash FROM users WHERE username = ?", username)
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUnauthorized
		}
		return models.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return models.User{}, ErrUnauthorized
	}

	row = s.db.QueryRow("SELECT "+publicUserColumns+" FROM users WHERE username = ?", username)
	return scanUser(row)
}

// ListUsers retrieves every user with the password-omitted projection.
func (s *UserService) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + publicUserColumns + " FROM users ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+publicUserColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfile applies a partial update of display name and/or profile
// picture. At least one field must be supplied.
func (s *UserService) UpdateProfile(id string, displayName, profilePicture *string) (models.User, error) {
	if displayName == nil && profilePicture == nil {
		return models.User{}, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if _, err := s.GetUserByID(id); err != nil {
		return models.User{}, err
	}

	if displayName != nil {
		if _, err := s.db.Exec("UPDATE users SET display_name = ? WHERE id = ?", *displayName, id); err != nil {
			return models.User{}, err
		}
	}
	if profilePicture != nil {
		if _, err := s.db.Exec("UPDATE users SET profile_picture = ? WHERE id = ?", *profilePicture, id); err != nil {
			return models.User{}, err
		}
	}
	return s.GetUserByID(id)
}

// SetBan bans the target user. Only admins may ban; an absent duration
// means the ban is permanent.
func (s *UserService) SetBan(adminID, targetUsername string, durationMinutes *int) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}

	var expiration *time.Time
	if durationMinutes != nil {
		e := time.Now().UTC().Add(time.Duration(*durationMinutes) * time.Minute)
		expiration = &e
	}

	res, err := s.db.Exec("UPDATE users SET is_banned = 1, ban_expiration = ? WHERE username = ?", expiration, targetUsername)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, targetUsername)
	}
	return nil
}

// Unban lifts a ban from the target user. Only admins may unban.
func (s *UserService) Unban(adminID, targetUsername string) error {
	if err := s.requireAdmin(adminID); err != nil {
		return err
	}

	res, err := s.db.Exec("UPDATE users SET is_banned = 0, ban_expiration = NULL WHERE username = ?", targetUsername)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: user %s", ErrNotFound, targetUsername)
	}
	return nil
}

// IsBanned reports whether a user's ban is currently active. A ban whose
// expiration has passed is cleared before reporting; the clear is
// idempotent, so concurrent checks are harmless.
func (s *UserService) IsBanned(id string) (bool, error) {
	_, err := s.db.Exec(
		"UPDATE users SET is_banned = 0, ban_expiration = NULL WHERE id = ? AND is_banned = 1 AND ban_expiration IS NOT NULL AND ban_expiration <= ?",
		id, time.Now().UTC())
	if err != nil {
		return false, err
	}

	var banned bool
	row := s.db.QueryRow("SELECT is_banned FROM users WHERE id = ?", id)
	if err := row.Scan(&banned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return false, err
	}
	return banned, nil
}

func (s *UserService) requireAdmin(id string) error {
	var role string
	row := s.db.QueryRow("SELECT role FROM users WHERE id = ?", id)
	if err := row.Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: admin privileges required", ErrForbidden)
		}
		return err
	}
	if role != models.RoleAdmin {
		return fmt.Errorf("%w: admin privileges required", ErrForbidden)
	}
	return nil
}
