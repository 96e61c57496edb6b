package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// UsersHandler handles profile edits.
type UsersHandler struct {
	DB *sql.DB
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			jsonError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		req.Name = &name
	}

	user, err := store.UpdateUserProfile(r.Context(), h.DB, claims.UserID, req)
	if err != nil {
		slog.Error("failed to update profile", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if user == nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	slog.Info("profile updated", "user", user.Email)
	jsonResponse(w, http.StatusOK, user)
}
