package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// FavoritesHandler handles the caller's favorite listings.
type FavoritesHandler struct {
	DB *sql.DB
}

// List handles GET /api/favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	listings, err := store.ListFavorites(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list favorites", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list favorites")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Add handles POST /api/favorites/{id}.
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	listing, err := store.GetListing(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get listing", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}
	if listing == nil {
		jsonError(w, http.StatusNotFound, "listing not found")
		return
	}

	added, err := store.AddFavorite(r.Context(), h.DB, claims.UserID, id)
	if err != nil {
		slog.Error("failed to add favorite", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to add favorite")
		return
	}
	if !added {
		jsonError(w, http.StatusBadRequest, "already a favorite")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "added to favorites"})
}

// Remove handles DELETE /api/favorites/{id}.
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	removed, err := store.RemoveFavorite(r.Context(), h.DB, claims.UserID, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to remove favorite", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to remove favorite")
		return
	}
	if !removed {
		jsonError(w, http.StatusNotFound, "favorite not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "removed from favorites"})
}

// Check handles GET /api/favorites/check/{id}.
func (h *FavoritesHandler) Check(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	ok, err := store.IsFavorite(r.Context(), h.DB, claims.UserID, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to check favorite", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to check favorite")
		return
	}
	jsonResponse(w, http.StatusOK, model.FavoriteCheck{IsFavorited: ok})
}
