package model

import "time"

// SupportTicket is a message from a user to the operators.
type SupportTicket struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Support ticket statuses.
const (
	SupportStatusOpen   = "open"
	SupportStatusClosed = "closed"
)

// SupportRequest is the body of POST /support.
type SupportRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// DescriptionRequest is the body of POST /ai/generate-description.
type DescriptionRequest struct {
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	CategoryFields map[string]any `json:"category_fields"`
}

// DescriptionResponse is returned by POST /ai/generate-description.
type DescriptionResponse struct {
	Description string `json:"description"`
}

// PriceRequest is the body of POST /ai/suggest-price.
type PriceRequest struct {
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	Condition      string         `json:"condition,omitempty"`
	CategoryFields map[string]any `json:"category_fields"`
}

// PriceResponse is returned by POST /ai/suggest-price.
type PriceResponse struct {
	SuggestedPrice string `json:"suggested_price"`
}
