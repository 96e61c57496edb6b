package model

import "time"

// Offer is a buyer-proposed price for a listing.
type Offer struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listing_id"`
	ListingTitle  string    `json:"listing_title,omitempty"`
	ListingImage  string    `json:"listing_image,omitempty"`
	BuyerID       string    `json:"buyer_id"`
	BuyerName     string    `json:"buyer_name,omitempty"`
	SellerID      string    `json:"seller_id"`
	OfferedPrice  float64   `json:"offered_price"`
	OriginalPrice float64   `json:"original_price"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Offer statuses.
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// Offer actions accepted by POST /offers/{id}/{action}.
const (
	OfferActionAccept = "accept"
	OfferActionReject = "reject"
)

// OfferStatusFor maps an action to the status it produces.
// The second return is false for unknown actions.
func OfferStatusFor(action string) (string, bool) {
	switch action {
	case OfferActionAccept:
		return OfferStatusAccepted, true
	case OfferActionReject:
		return OfferStatusRejected, true
	}
	return "", false
}

// CreateOfferRequest is the body of POST /offers.
type CreateOfferRequest struct {
	ListingID    string  `json:"listing_id"`
	SellerID     string  `json:"seller_id"`
	OfferedPrice float64 `json:"offered_price"`
	Message      string  `json:"message,omitempty"`
}
