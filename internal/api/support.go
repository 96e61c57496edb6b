package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// SupportHandler handles support tickets.
type SupportHandler struct {
	DB *sql.DB
}

// Create handles POST /api/support.
func (h *SupportHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.SupportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if subject == "" || message == "" {
		jsonError(w, http.StatusBadRequest, "subject and message required")
		return
	}

	ticket, err := store.CreateSupportTicket(r.Context(), h.DB, claims.UserID, subject, message)
	if err != nil {
		slog.Error("failed to create support ticket", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create support ticket")
		return
	}

	slog.Info("support ticket created", "user", claims.Email, "ticket", ticket.ID)
	jsonResponse(w, http.StatusOK, ticket)
}

// Mine handles GET /api/support/my.
func (h *SupportHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	tickets, err := store.ListSupportTickets(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list support tickets", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list support tickets")
		return
	}
	if tickets == nil {
		tickets = []model.SupportTicket{}
	}
	jsonResponse(w, http.StatusOK, tickets)
}
