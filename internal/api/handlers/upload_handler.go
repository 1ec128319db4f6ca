package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/miguelsv/chatline-be/internal/services"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler handles multipart profile updates: display name and/or a
// profile picture stored under the upload directory.
type UploadHandler struct {
	service   services.UserServiceProvider
	uploadDir string
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service services.UserServiceProvider, uploadDir string) *UploadHandler {
	return &UploadHandler{service: service, uploadDir: uploadDir}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeFilename strips any directory components and characters that
// could escape the upload directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return name
}

// UploadProfilePicture handles the multipart form. Either a displayName
// field, a profilePicture file, or both must be present.
func (h *UploadHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, fmt.Errorf("%w: invalid multipart form", services.ErrInvalidInput))
		return
	}

	userID := r.FormValue("userId")
	if userID == "" {
		writeError(w, fmt.Errorf("%w: userId is required", services.ErrInvalidInput))
		return
	}

	var displayName *string
	if v := r.FormValue("displayName"); v != "" {
		displayName = &v
	}

	var picturePath *string
	file, header, err := r.FormFile("profilePicture")
	if err == nil {
		defer file.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeFilename(header.Filename))
		dst, err := os.Create(filepath.Join(h.uploadDir, filename))
		if err != nil {
			log.Error().Err(err).Str("filename", filename).Msg("Failed to create upload file")
			writeError(w, err)
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			log.Error().Err(err).Str("filename", filename).Msg("Failed to write upload file")
			writeError(w, err)
			return
		}

		p := "/uploads/" + filename
		picturePath = &p
	} else if err != http.ErrMissingFile {
		writeError(w, fmt.Errorf("%w: invalid profilePicture file", services.ErrInvalidInput))
		return
	}

	user, err := h.service.UpdateProfile(userID, displayName, picturePath)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to update profile")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
