package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// OffersHandler handles price offers between buyers and sellers.
type OffersHandler struct {
	DB *sql.DB
}

// Create handles POST /api/offers.
func (h *OffersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.CreateOfferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ListingID == "" {
		jsonError(w, http.StatusBadRequest, "listing_id required")
		return
	}
	if req.OfferedPrice <= 0 {
		jsonError(w, http.StatusBadRequest, "offered price must be positive")
		return
	}

	listing, err := store.GetListing(r.Context(), h.DB, req.ListingID)
	if err != nil {
		slog.Error("failed to get listing", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create offer")
		return
	}
	if listing == nil {
		jsonError(w, http.StatusNotFound, "listing not found")
		return
	}
	if listing.SellerID == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot make an offer on your own listing")
		return
	}
	// The listing is authoritative for who receives the offer.
	req.SellerID = listing.SellerID

	buyer, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || buyer == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	offer, err := store.CreateOffer(r.Context(), h.DB, buyer, req)
	if err != nil {
		slog.Error("failed to create offer", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create offer")
		return
	}

	slog.Info("offer created", "user", claims.Email, "listing", req.ListingID, "price", req.OfferedPrice)
	jsonResponse(w, http.StatusOK, offer)
}

// Received handles GET /api/offers/my.
func (h *OffersHandler) Received(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	offers, err := store.ListReceivedOffers(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list offers", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list offers")
		return
	}
	if offers == nil {
		offers = []model.Offer{}
	}
	jsonResponse(w, http.StatusOK, offers)
}

// Act handles POST /api/offers/{id}/accept and POST /api/offers/{id}/reject.
func (h *OffersHandler) Act(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	status, ok := model.OfferStatusFor(r.PathValue("action"))
	if !ok {
		jsonError(w, http.StatusNotFound, "unknown offer action")
		return
	}

	offer, err := store.GetOffer(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get offer", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update offer")
		return
	}
	if offer == nil {
		jsonError(w, http.StatusNotFound, "offer not found")
		return
	}
	if offer.SellerID != claims.UserID {
		jsonError(w, http.StatusForbidden, "not authorized")
		return
	}

	updated, err := store.SetOfferStatus(r.Context(), h.DB, offer.ID, status)
	if err != nil {
		slog.Error("failed to update offer", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update offer")
		return
	}
	if updated == nil {
		jsonError(w, http.StatusNotFound, "offer not found")
		return
	}

	slog.Info("offer updated", "user", claims.Email, "offer", offer.ID, "status", status)
	jsonResponse(w, http.StatusOK, updated)
}
