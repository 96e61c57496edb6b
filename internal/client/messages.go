package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/chancenmarket/chancen/internal/model"
)

func threadPath(prefix, listingID, otherUserID string) string {
	return prefix + url.PathEscape(listingID) + "/" + url.PathEscape(otherUserID)
}

// Thread returns the messages between the caller and otherUserID about a
// listing, in server order.
func (c *Client) Thread(ctx context.Context, listingID, otherUserID string) ([]model.Message, error) {
	var messages []model.Message
	path := threadPath("/messages/", listingID, otherUserID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &messages, "Could not load messages"); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts a message.
func (c *Client) SendMessage(ctx context.Context, req model.SendMessageRequest) (*model.Message, error) {
	var msg model.Message
	if err := c.do(ctx, http.MethodPost, "/messages", nil, req, &msg, "Could not send message"); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkRead marks the counterparty's messages in a thread as read.
func (c *Client) MarkRead(ctx context.Context, listingID, otherUserID string) error {
	path := threadPath("/messages/mark-read/", listingID, otherUserID)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil, "Could not mark messages read")
}

// Conversations returns the caller's conversation list.
func (c *Client) Conversations(ctx context.Context) ([]model.Conversation, error) {
	var convs []model.Conversation
	if err := c.do(ctx, http.MethodGet, "/messages/conversations", nil, nil, &convs, "Could not load conversations"); err != nil {
		return nil, err
	}
	return convs, nil
}

// UnreadCount returns the number of unread messages addressed to the caller.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var n model.UnreadCount
	if err := c.do(ctx, http.MethodGet, "/messages/unread-count", nil, nil, &n, "Could not load unread count"); err != nil {
		return 0, err
	}
	return n.Count, nil
}
