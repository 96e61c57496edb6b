package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/store"
)

// MessagesHandler handles threads, conversations and unread counts.
type MessagesHandler struct {
	DB *sql.DB
}

// Send handles POST /api/messages.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req model.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ToUserID == "" || req.ListingID == "" {
		jsonError(w, http.StatusBadRequest, "to_user_id and listing_id required")
		return
	}
	if req.ToUserID == claims.UserID {
		jsonError(w, http.StatusBadRequest, "cannot message yourself")
		return
	}
	if req.MessageType == "" {
		req.MessageType = model.MessageTypeText
	}
	if !model.ValidMessageType(req.MessageType) {
		jsonError(w, http.StatusBadRequest, "invalid message type")
		return
	}
	if strings.TrimSpace(req.Content) == "" && len(req.Images) == 0 && req.Audio == "" {
		jsonError(w, http.StatusBadRequest, "message is empty")
		return
	}
	if len(req.Images) > model.MaxMessageImages {
		jsonError(w, http.StatusBadRequest, "too many images")
		return
	}

	recipient, err := store.GetUser(r.Context(), h.DB, req.ToUserID)
	if err != nil {
		slog.Error("failed to get recipient", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send message")
		return
	}
	if recipient == nil {
		jsonError(w, http.StatusNotFound, "recipient not found")
		return
	}

	msg, err := store.CreateMessage(r.Context(), h.DB, claims.UserID, req)
	if err != nil {
		slog.Error("failed to send message", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	jsonResponse(w, http.StatusOK, msg)
}

// Thread handles GET /api/messages/{listingId}/{otherUserId}.
func (h *MessagesHandler) Thread(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	messages, err := store.ListThread(r.Context(), h.DB, claims.UserID, r.PathValue("listingId"), r.PathValue("otherUserId"))
	if err != nil {
		slog.Error("failed to list thread", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	jsonResponse(w, http.StatusOK, messages)
}

// MarkRead handles POST /api/messages/mark-read/{listingId}/{otherUserId}.
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	n, err := store.MarkThreadRead(r.Context(), h.DB, claims.UserID, r.PathValue("listingId"), r.PathValue("otherUserId"))
	if err != nil {
		slog.Error("failed to mark thread read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to mark messages read")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"marked": n})
}

// Conversations handles GET /api/messages/conversations.
func (h *MessagesHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	conversations, err := store.ListConversations(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to list conversations", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list conversations")
		return
	}
	if conversations == nil {
		conversations = []model.Conversation{}
	}
	jsonResponse(w, http.StatusOK, conversations)
}

// UnreadCount handles GET /api/messages/unread-count.
func (h *MessagesHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	n, err := store.CountUnread(r.Context(), h.DB, claims.UserID)
	if err != nil {
		slog.Error("failed to count unread messages", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to count unread messages")
		return
	}
	jsonResponse(w, http.StatusOK, model.UnreadCount{Count: n})
}
