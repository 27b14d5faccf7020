package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/env"
)

const defaultResendAPIURL = "https://api.resend.com/emails"

// Client sends transactional email through the Resend HTTP API.
type Client struct {
	APIKey string
	From   string
	APIURL string

	HTTPClient *http.Client
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// NewClientFromEnv builds a client from RESEND_API_KEY / MAIL_FROM.
func NewClientFromEnv() *Client {
	return &Client{
		APIKey: strings.TrimSpace(env.GetEnv("RESEND_API_KEY", "")),
		From:   strings.TrimSpace(env.GetEnv("MAIL_FROM", "GymSync <noreply@gymsync.app>")),
		APIURL: strings.TrimSpace(env.GetEnv("RESEND_API_URL", defaultResendAPIURL)),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Send delivers one message. The caller decides whether a failure is fatal.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.New("RESEND_API_KEY is not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("recipient is required")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"from":    c.From,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("resend request failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
