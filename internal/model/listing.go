package model

import "time"

// Listing is a single classified ad.
type Listing struct {
	ID             string         `json:"id"`
	SellerID       string         `json:"seller_id"`
	SellerName     string         `json:"seller_name"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"`
	Category       string         `json:"category"`
	Images         []string       `json:"images"`
	Video          string         `json:"video,omitempty"`
	Videos         []string       `json:"videos,omitempty"`
	CategoryFields map[string]any `json:"category_fields"`
	Views          int            `json:"views"`
	Negotiable     bool           `json:"negotiable"`
	Location       string         `json:"location,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ListingDraft is the body of a create-listing submission.
type ListingDraft struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Price          float64        `json:"price"`
	Category       string         `json:"category"`
	Images         []string       `json:"images"`
	Video          string         `json:"video,omitempty"`
	Videos         []string       `json:"videos,omitempty"`
	CategoryFields map[string]any `json:"category_fields"`
	Negotiable     bool           `json:"negotiable"`
	Location       string         `json:"location,omitempty"`
}

// ListingQuery holds the query parameters of a listing search.
// Zero values are omitted from the request.
type ListingQuery struct {
	Category string
	Search   string
	Limit    int
}

// Listing page sizes.
const (
	DefaultListingLimit = 20
	SearchListingLimit  = 50
	MaxListingLimit     = 100
)

// FavoriteCheck is the body returned by GET /favorites/check/{id}.
type FavoriteCheck struct {
	IsFavorited bool `json:"is_favorited"`
}
