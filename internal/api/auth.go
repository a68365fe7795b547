package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login exchanges credentials for a token. A 401 here means bad
// credentials, so the call is exempt from session teardown.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid login request: %w", err)
	}
	var resp LoginResponse
	if err := c.send(ctx, http.MethodPost, "/auth/login", nil, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RegisterGuest creates a guest account. Exempt for the same reason as
// Login.
func (c *Client) RegisterGuest(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid registration request: %w", err)
	}
	var resp UserResponse
	if err := c.send(ctx, http.MethodPost, "/auth/register/guest", nil, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*UserResponse, error) {
	var resp UserResponse
	if err := c.doGet(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword rotates the current account's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid change-password request: %w", err)
	}
	return c.doPost(ctx, "/auth/change-password", req, nil)
}

// ListUsers returns all accounts (admin).
func (c *Client) ListUsers(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	if err := c.doGet(ctx, "/auth/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeactivateUser disables an account (admin).
func (c *Client) DeactivateUser(ctx context.Context, userID int64) error {
	return c.doPatch(ctx, fmt.Sprintf("/auth/admin/users/%d/deactivate", userID), nil, nil)
}
