package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/chancenmarket/chancen/internal/model"
)

// Listings searches listings. Empty query fields are not sent.
func (c *Client) Listings(ctx context.Context, q model.ListingQuery) ([]model.Listing, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var listings []model.Listing
	if err := c.do(ctx, http.MethodGet, "/listings", params, nil, &listings, "Could not load listings"); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listing returns one listing by id.
func (c *Client) Listing(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, nil, &l, "Could not load listing"); err != nil {
		return nil, err
	}
	return &l, nil
}

// MyListings returns the caller's own listings.
func (c *Client) MyListings(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := c.do(ctx, http.MethodGet, "/listings/my", nil, nil, &listings, "Could not load your listings"); err != nil {
		return nil, err
	}
	return listings, nil
}

// CreateListing publishes a new listing.
func (c *Client) CreateListing(ctx context.Context, d model.ListingDraft) (*model.Listing, error) {
	var l model.Listing
	if err := c.do(ctx, http.MethodPost, "/listings", nil, d, &l, "Could not create listing"); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteListing removes one of the caller's listings.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/listings/"+url.PathEscape(id), nil, nil, nil, "Could not delete listing")
}

// Categories returns the category catalogue.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories, "Could not load categories"); err != nil {
		return nil, err
	}
	return categories, nil
}

// Favorites returns the caller's favorite listings.
func (c *Client) Favorites(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &listings, "Could not load favorites"); err != nil {
		return nil, err
	}
	return listings, nil
}

// AddFavorite marks a listing as favorite.
func (c *Client) AddFavorite(ctx context.Context, listingID string) error {
	return c.do(ctx, http.MethodPost, "/favorites/"+url.PathEscape(listingID), nil, nil, nil, "Could not add favorite")
}

// RemoveFavorite unmarks a favorite listing.
func (c *Client) RemoveFavorite(ctx context.Context, listingID string) error {
	return c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(listingID), nil, nil, nil, "Could not remove favorite")
}

// IsFavorite reports whether the caller has favorited the listing.
func (c *Client) IsFavorite(ctx context.Context, listingID string) (bool, error) {
	var check model.FavoriteCheck
	if err := c.do(ctx, http.MethodGet, "/favorites/check/"+url.PathEscape(listingID), nil, nil, &check, "Could not check favorite"); err != nil {
		return false, err
	}
	return check.IsFavorited, nil
}
