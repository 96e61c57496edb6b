// Package market wraps the listing, favorite, offer and support endpoints
// with the small amount of state each screen keeps between loads.
package market

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/chancenmarket/chancen/internal/client"
	"github.com/chancenmarket/chancen/internal/model"
)

// Feed is a listing search result. Each Load replaces the previous result.
type Feed struct {
	api *client.Client

	mu    sync.Mutex
	query model.ListingQuery
	items []model.Listing
}

// NewFeed returns an empty feed.
func NewFeed(api *client.Client) *Feed {
	return &Feed{api: api}
}

// Load runs q. A zero limit becomes the home page size, or the larger search
// page size when q has a search term.
func (f *Feed) Load(ctx context.Context, q model.ListingQuery) error {
	if q.Limit == 0 {
		q.Limit = model.DefaultListingLimit
		if q.Search != "" {
			q.Limit = model.SearchListingLimit
		}
	}

	items, err := f.api.Listings(ctx, q)
	if err != nil {
		return fmt.Errorf("loading listings: %w", err)
	}

	f.mu.Lock()
	f.query = q
	f.items = items
	f.mu.Unlock()
	return nil
}

// Refresh repeats the last query.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	q := f.query
	f.mu.Unlock()
	return f.Load(ctx, q)
}

// Items returns the last result in server order.
func (f *Feed) Items() []model.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

// Categories caches the category list for the lifetime of the value.
// A failed load is retried on the next call.
type Categories struct {
	api *client.Client

	mu     sync.Mutex
	loaded bool
	items  []model.Category
}

// NewCategories returns an unloaded category cache.
func NewCategories(api *client.Client) *Categories {
	return &Categories{api: api}
}

// Load fetches the categories on first use and returns the cached list
// afterwards.
func (c *Categories) Load(ctx context.Context) ([]model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return slices.Clone(c.items), nil
	}

	items, err := c.api.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}
	c.items = items
	c.loaded = true
	return slices.Clone(items), nil
}

// Find returns a loaded category by id.
func (c *Categories) Find(ctx context.Context, id string) (model.Category, bool, error) {
	items, err := c.Load(ctx)
	if err != nil {
		return model.Category{}, false, err
	}
	for _, cat := range items {
		if cat.ID == id {
			return cat, true, nil
		}
	}
	return model.Category{}, false, nil
}
