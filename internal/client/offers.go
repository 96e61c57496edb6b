package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/chancenmarket/chancen/internal/model"
)

// CreateOffer submits a price offer for a listing.
func (c *Client) CreateOffer(ctx context.Context, req model.CreateOfferRequest) (*model.Offer, error) {
	var offer model.Offer
	if err := c.do(ctx, http.MethodPost, "/offers", nil, req, &offer, "Could not send offer"); err != nil {
		return nil, err
	}
	return &offer, nil
}

// ReceivedOffers returns offers made on the caller's listings.
func (c *Client) ReceivedOffers(ctx context.Context) ([]model.Offer, error) {
	var offers []model.Offer
	if err := c.do(ctx, http.MethodGet, "/offers/my", nil, nil, &offers, "Could not load offers"); err != nil {
		return nil, err
	}
	return offers, nil
}

// RespondToOffer accepts or rejects an offer. action is one of
// model.OfferActionAccept or model.OfferActionReject.
func (c *Client) RespondToOffer(ctx context.Context, offerID, action string) error {
	path := "/offers/" + url.PathEscape(offerID) + "/" + url.PathEscape(action)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil, "Could not update offer")
}
