package model

import "time"

// Message is one entry in a two-party, single-listing thread.
type Message struct {
	ID          string    `json:"id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	ListingID   string    `json:"listing_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Audio       string    `json:"audio,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message types.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeAudio = "audio"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio:
		return true
	}
	return false
}

// Attachment limits for outgoing messages.
const (
	MaxMessageImages = 5
	MaxAudioSeconds  = 60
)

// SendMessageRequest is the body of POST /messages.
type SendMessageRequest struct {
	ToUserID    string   `json:"to_user_id"`
	ListingID   string   `json:"listing_id"`
	Content     string   `json:"content"`
	MessageType string   `json:"message_type"`
	Images      []string `json:"images,omitempty"`
	Audio       string   `json:"audio,omitempty"`
}

// Conversation groups the messages between the caller and one counterparty
// about one listing. It is rebuilt by the backend on every fetch.
type Conversation struct {
	ListingID       string    `json:"listing_id"`
	ListingTitle    string    `json:"listing_title"`
	ListingImage    string    `json:"listing_image,omitempty"`
	OtherUserID     string    `json:"other_user_id"`
	OtherUserName   string    `json:"other_user_name"`
	OtherUserImage  string    `json:"other_user_image,omitempty"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

// UnreadCount is the body returned by GET /messages/unread-count.
type UnreadCount struct {
	Count int `json:"count"`
}
