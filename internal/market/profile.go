package market

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/model"
)

// MyListings is the caller's own listings.
type MyListings struct {
	api *client.Client

	mu    sync.Mutex
	items []model.Listing
}

// NewMyListings returns an empty list backed by api.
func NewMyListings(api *client.Client) *MyListings {
	return &MyListings{api: api}
}

// Load replaces the list with the caller's listings.
func (m *MyListings) Load(ctx context.Context) error {
	items, err := m.api.MyListings(ctx)
	if err != nil {
		return fmt.Errorf("loading my listings: %w", err)
	}
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
	return nil
}

// Delete removes a listing and reloads the list.
func (m *MyListings) Delete(ctx context.Context, id string) error {
	if err := m.api.DeleteListing(ctx, id); err != nil {
		return err
	}
	return m.Load(ctx)
}

// Items returns a copy of the loaded listings.
func (m *MyListings) Items() []model.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

// Favorites is the caller's favorite listings. Removal updates the local
// list without a reload.
type Favorites struct {
	api *client.Client

	mu    sync.Mutex
	items []model.Listing
}

// NewFavorites returns an empty list backed by api.
func NewFavorites(api *client.Client) *Favorites {
	return &Favorites{api: api}
}

// Load replaces the list with the caller's favorites.
func (f *Favorites) Load(ctx context.Context) error {
	items, err := f.api.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("loading favorites: %w", err)
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// Remove unfavorites a listing and drops it from the local list.
func (f *Favorites) Remove(ctx context.Context, id string) error {
	if err := f.api.RemoveFavorite(ctx, id); err != nil {
		return err
	}
	f.mu.Lock()
	f.items = slices.DeleteFunc(f.items, func(l model.Listing) bool { return l.ID == id })
	f.mu.Unlock()
	return nil
}

// Items returns a copy of the loaded favorites.
func (f *Favorites) Items() []model.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

// Offers is the list of offers received on the caller's listings.
type Offers struct {
	api *client.Client

	mu    sync.Mutex
	items []model.Offer
}

// NewOffers returns an empty list backed by api.
func NewOffers(api *client.Client) *Offers {
	return &Offers{api: api}
}

// Load replaces the list with the offers received.
func (o *Offers) Load(ctx context.Context) error {
	items, err := o.api.ReceivedOffers(ctx)
	if err != nil {
		return fmt.Errorf("loading offers: %w", err)
	}
	o.mu.Lock()
	o.items = items
	o.mu.Unlock()
	return nil
}

// Accept accepts an offer and reloads.
func (o *Offers) Accept(ctx context.Context, id string) error {
	return o.respond(ctx, id, model.OfferActionAccept)
}

// Reject rejects an offer and reloads.
func (o *Offers) Reject(ctx context.Context, id string) error {
	return o.respond(ctx, id, model.OfferActionReject)
}

func (o *Offers) respond(ctx context.Context, id, action string) error {
	if err := o.api.RespondToOffer(ctx, id, action); err != nil {
		return err
	}
	return o.Load(ctx)
}

// Items returns a copy of the loaded offers.
func (o *Offers) Items() []model.Offer {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.items)
}

// Pending returns the offers still awaiting a decision.
func (o *Offers) Pending() []model.Offer {
	items := o.Items()
	return slices.DeleteFunc(items, func(of model.Offer) bool { return of.Status != model.OfferStatusPending })
}

// ErrIncomplete is returned when a required field is blank.
var ErrIncomplete = errors.New("missing required field")

// SubmitSupport files a support ticket. Subject and message are required.
func SubmitSupport(ctx context.Context, api *client.Client, subject, message string) (*model.SupportTicket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if subject == "" || message == "" {
		return nil, fmt.Errorf("%w: subject and message are required", ErrIncomplete)
	}
	return api.Support(ctx, subject, message)
}

// GenerateDescription asks for a listing description. Title and category
// are required.
func GenerateDescription(ctx context.Context, api *client.Client, title, category string, fields map[string]any) (string, error) {
	if strings.TrimSpace(title) == "" || category == "" {
		return "", fmt.Errorf("%w: title and category are required", ErrIncomplete)
	}
	return api.GenerateDescription(ctx, model.DescriptionRequest{Title: title, Category: category, CategoryFields: fields})
}

// SuggestPrice asks for a price range. Title and category are required.
func SuggestPrice(ctx context.Context, api *client.Client, title, category, condition string, fields map[string]any) (string, error) {
	if strings.TrimSpace(title) == "" || category == "" {
		return "", fmt.Errorf("%w: title and category are required", ErrIncomplete)
	}
	return api.SuggestPrice(ctx, model.PriceRequest{Title: title, Category: category, Condition: condition, CategoryFields: fields})
}
