package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/model"
	"github.com/chancenmarket/chancen/internal/session"
)

var (
	ErrLoginRequired = errors.New("login required")
	ErrOwnListing    = errors.New("this is your own listing")
	ErrNotLoaded     = errors.New("listing not loaded")
	ErrInvalidOffer  = errors.New("offer price must be greater than zero")
	ErrInvalidDraft  = errors.New("invalid listing")
)

// ConversationKey identifies a thread: one listing and one counterparty.
type ConversationKey struct {
	ListingID   string
	OtherUserID string
}

// Detail is the state of one listing page.
type Detail struct {
	api  *client.Client
	sess *session.Session

	mu       sync.Mutex
	listing  *model.Listing
	favorite bool
}

// NewDetail returns an empty detail page for the given session.
func NewDetail(api *client.Client, sess *session.Session) *Detail {
	return &Detail{api: api, sess: sess}
}

// Load fetches the listing and, when signed in, whether it is a favorite.
// A failed favorite check is logged and leaves the listing unmarked.
func (d *Detail) Load(ctx context.Context, id string) error {
	listing, err := d.api.Listing(ctx, id)
	if err != nil {
		return fmt.Errorf("loading listing %s: %w", id, err)
	}

	favorite := false
	if d.sess.LoggedIn() {
		favorite, err = d.api.IsFavorite(ctx, id)
		if err != nil {
			slog.Warn("checking favorite failed", "listing", id, "error", err)
			favorite = false
		}
	}

	d.mu.Lock()
	d.listing = listing
	d.favorite = favorite
	d.mu.Unlock()
	return nil
}

// Listing returns a copy of the loaded listing, or nil.
func (d *Detail) Listing() *model.Listing {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listing == nil {
		return nil
	}
	l := *d.listing
	return &l
}

// Favorite reports whether the loaded listing is a favorite.
func (d *Detail) Favorite() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.favorite
}

// ToggleFavorite adds or removes the listing from favorites and returns the
// new state.
func (d *Detail) ToggleFavorite(ctx context.Context) (bool, error) {
	if !d.sess.LoggedIn() {
		return false, ErrLoginRequired
	}
	listing := d.Listing()
	if listing == nil {
		return false, ErrNotLoaded
	}

	favorite := d.Favorite()
	var err error
	if favorite {
		err = d.api.RemoveFavorite(ctx, listing.ID)
	} else {
		err = d.api.AddFavorite(ctx, listing.ID)
	}
	if err != nil {
		return favorite, err
	}

	d.mu.Lock()
	d.favorite = !favorite
	d.mu.Unlock()
	return !favorite, nil
}

// MakeOffer proposes price for the loaded listing.
func (d *Detail) MakeOffer(ctx context.Context, price float64, message string) (*model.Offer, error) {
	listing, err := d.counterparty()
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, ErrInvalidOffer
	}
	return d.api.CreateOffer(ctx, model.CreateOfferRequest{
		ListingID:    listing.ID,
		SellerID:     listing.SellerID,
		OfferedPrice: price,
		Message:      strings.TrimSpace(message),
	})
}

// Contact returns the key of the thread with the seller.
func (d *Detail) Contact() (ConversationKey, error) {
	listing, err := d.counterparty()
	if err != nil {
		return ConversationKey{}, err
	}
	return ConversationKey{ListingID: listing.ID, OtherUserID: listing.SellerID}, nil
}

// counterparty returns the loaded listing if the caller may talk to its
// seller.
func (d *Detail) counterparty() (*model.Listing, error) {
	if !d.sess.LoggedIn() {
		return nil, ErrLoginRequired
	}
	listing := d.Listing()
	if listing == nil {
		return nil, ErrNotLoaded
	}
	if listing.SellerID == d.sess.UserID() {
		return nil, ErrOwnListing
	}
	return listing, nil
}

// ValidateDraft checks a listing before it is submitted. The returned error
// wraps ErrInvalidDraft.
func ValidateDraft(d model.ListingDraft) error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	case strings.TrimSpace(d.Description) == "":
		return fmt.Errorf("%w: description is required", ErrInvalidDraft)
	case d.Price <= 0:
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidDraft)
	case d.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidDraft)
	case len(d.Images) == 0:
		return fmt.Errorf("%w: at least one image is required", ErrInvalidDraft)
	}
	return nil
}

// CreateListing validates and publishes a listing.
func CreateListing(ctx context.Context, api *client.Client, d model.ListingDraft) (*model.Listing, error) {
	if err := ValidateDraft(d); err != nil {
		return nil, err
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	return api.CreateListing(ctx, d)
}
