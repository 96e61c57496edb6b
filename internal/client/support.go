package client

import (
	"context"
	"net/http"

	"github.com/chancenmarket/chancen/internal/model"
)

// Support files a support ticket.
func (c *Client) Support(ctx context.Context, subject, message string) (*model.SupportTicket, error) {
	var ticket model.SupportTicket
	body := model.SupportRequest{Subject: subject, Message: message}
	if err := c.do(ctx, http.MethodPost, "/support", nil, body, &ticket, "Could not send support request"); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GenerateDescription asks the backend to draft a listing description.
func (c *Client) GenerateDescription(ctx context.Context, req model.DescriptionRequest) (string, error) {
	var resp model.DescriptionResponse
	if err := c.do(ctx, http.MethodPost, "/ai/generate-description", nil, req, &resp, "Could not generate description"); err != nil {
		return "", err
	}
	return resp.Description, nil
}

// SuggestPrice asks the backend for a price suggestion.
func (c *Client) SuggestPrice(ctx context.Context, req model.PriceRequest) (string, error) {
	var resp model.PriceResponse
	if err := c.do(ctx, http.MethodPost, "/ai/suggest-price", nil, req, &resp, "Could not suggest price"); err != nil {
		return "", err
	}
	return resp.SuggestedPrice, nil
}
