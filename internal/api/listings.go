package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// ListingsHandler handles listing and category endpoints.
type ListingsHandler struct {
	DB *sql.DB
}

// Categories handles GET /api/categories.
func (h *ListingsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, model.Categories())
}

// List handles GET /api/listings.
func (h *ListingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := model.ListingQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		q.Limit = limit
	}

	listings, err := store.ListListings(r.Context(), h.DB, q)
	if err != nil {
		slog.Error("failed to list listings", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Get handles GET /api/listings/{id}. Every fetch counts as a view.
func (h *ListingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	listing, err := store.GetListing(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get listing", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil {
		jsonError(w, http.StatusNotFound, "listing not found")
		return
	}

	if err := store.IncrementListingViews(r.Context(), h.DB, id); err != nil {
		slog.Warn("failed to count listing view", "listing", id, "error", err)
	}

	jsonResponse(w, http.StatusOK, listing)
}

// Mine handles GET /api/listings/my.
func (h *ListingsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	listings, err := store.ListListingsBySeller(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list own listings", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list listings")
		return
	}
	if listings == nil {
		listings = []model.Listing{}
	}
	jsonResponse(w, http.StatusOK, listings)
}

// Create handles POST /api/listings.
func (h *ListingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.ListingDraft
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.Description) == "" {
		jsonError(w, http.StatusBadRequest, "title and description required")
		return
	}
	if req.Price < 0 {
		jsonError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if !model.CategoryExists(req.Category) {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}

	listing, err := store.CreateListing(r.Context(), h.DB, claims.UserID, req)
	if err != nil {
		slog.Error("failed to create listing", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create listing")
		return
	}

	slog.Info("listing created", "user", claims.Email, "listing", listing.ID, "category", listing.Category)
	jsonResponse(w, http.StatusOK, listing)
}

// Delete handles DELETE /api/listings/{id}. Only the seller or an admin may delete.
func (h *ListingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id := r.PathValue("id")

	listing, err := store.GetListing(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get listing", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}
	if listing == nil {
		jsonError(w, http.StatusNotFound, "listing not found")
		return
	}
	if listing.SellerID != claims.UserID && !model.IsAdmin(claims.Role) {
		jsonError(w, http.StatusForbidden, "not authorized")
		return
	}

	if err := store.DeleteListing(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete listing", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete listing")
		return
	}

	slog.Info("listing deleted", "user", claims.Email, "listing", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "listing deleted"})
}
