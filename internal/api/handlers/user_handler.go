package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/miguelsv/chatline-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// BanPayload defines the structure for ban and unban requests.
type BanPayload struct {
	AdminID        string `json:"adminId"`
	TargetUsername string `json:"targetUsername"`
	Duration       *int   `json:"duration"` // minutes; absent means permanent
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}

	user, err := h.service.Register(payload.Username, payload.Password, payload.DisplayName)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and returns the user record.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}

	user, err := h.service.Authenticate(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// List handles retrieving every user.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Ban handles banning a user by username.
func (h *UserHandler) Ban(w http.ResponseWriter, r *http.Request) {
	var payload BanPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}
	if payload.AdminID == "" || payload.TargetUsername == "" {
		writeError(w, fmt.Errorf("%w: adminId and targetUsername are required", services.ErrInvalidInput))
		return
	}

	if err := h.service.SetBan(payload.AdminID, payload.TargetUsername, payload.Duration); err != nil {
		log.Warn().Err(err).Str("target", payload.TargetUsername).Msg("Failed to ban user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Unban handles lifting a ban by username.
func (h *UserHandler) Unban(w http.ResponseWriter, r *http.Request) {
	var payload BanPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", services.ErrInvalidInput))
		return
	}
	if payload.AdminID == "" || payload.TargetUsername == "" {
		writeError(w, fmt.Errorf("%w: adminId and targetUsername are required", services.ErrInvalidInput))
		return
	}

	if err := h.service.Unban(payload.AdminID, payload.TargetUsername); err != nil {
		log.Warn().Err(err).Str("target", payload.TargetUsername).Msg("Failed to unban user")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
