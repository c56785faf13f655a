package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/racefan-dev/fantasy-chase/middleware"
	"github.com/racefan-dev/fantasy-chase/services"
)

const maxAvatarSize = 5 << 20 // 5MB

type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// ProfileHandler handles GET /users/me.
func (h *UserHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// UpdateDisplayNameHandler handles PATCH /users/me.
func (h *UserHandler) UpdateDisplayNameHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := readJSON(w, r, &body); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.userService.UpdateDisplayName(r.Context(), userID, body.DisplayName); err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "updated"}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}

// UploadAvatarHandler handles POST /users/me/avatar with a multipart form
// carrying the image under the "avatar" field.
func (h *UserHandler) UploadAvatarHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		badRequestResponse(w, errors.New("could not parse multipart form"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		badRequestResponse(w, errors.New("avatar file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	user, err := h.userService.UploadAvatar(r.Context(), userID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}); err != nil {
		serverErrorResponse(w, h.logger, err)
	}
}
