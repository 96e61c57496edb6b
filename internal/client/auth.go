package client

import (
	"context"
	"net/http"

	"github.com/chancenmarket/chancen/internal/model"
)

// Login exchanges credentials for a user and token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp, "Login failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns it with a token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &resp, "Registration failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user, "Could not load profile"); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the non-nil fields of upd and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, upd model.ProfileUpdate) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPut, "/users/profile", nil, upd, &user, "Could not update profile"); err != nil {
		return nil, err
	}
	return &user, nil
}
