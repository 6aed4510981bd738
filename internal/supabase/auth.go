package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User is the subset of a GoTrue user this service reads.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Aud   string `json:"aud"`
}

// AuthClient handles GoTrue operations.
type AuthClient struct {
	client *Client
}

// Auth returns an auth client.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

// GetUser returns the user that owns accessToken.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := a.client.requestWithToken(ctx, http.MethodGet, a.client.authURL+"/user", nil, nil, accessToken)
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}

	return &user, nil
}
