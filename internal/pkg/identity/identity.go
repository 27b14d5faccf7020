package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/env"
)

// Client talks to the identity provider's admin API with the privileged
// service key. It is only used for the two operations billing needs: the
// deferred email update on checkout completion and full user deletion.
type Client struct {
	BaseURL    string
	ServiceKey string

	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from AUTH_API_URL / AUTH_SERVICE_KEY.
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(env.GetEnv("AUTH_API_URL", "")), "/"),
		ServiceKey: strings.TrimSpace(env.GetEnv("AUTH_SERVICE_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// UpdateUserEmail sets a user's email and confirms it in the same call, so
// the user is not asked to re-verify an address the payment provider already
// verified.
func (c *Client) UpdateUserEmail(ctx context.Context, userID, email string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(email) == "" {
		return errors.New("user id and email are required")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"email":         email,
		"email_confirm": true,
	})
	if err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// DeleteUser removes the identity provider's user record.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user id is required")
	}

	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return err
	}
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.BaseURL == "" || c.ServiceKey == "" {
		return nil, errors.New("AUTH_API_URL/AUTH_SERVICE_KEY are not configured")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	req.Header.Set("apikey", c.ServiceKey)
	return req, nil
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("identity admin request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
