package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/env"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// Notification is the user-visible part of a push message.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers push notifications through the FCM HTTP v1 API using a
// Firebase service account. Delivery is best effort: per-token failures are
// logged and skipped, never retried.
type Sender struct {
	projectID string
	endpoint  string

	httpClient *http.Client
}

// NewSenderFromEnv builds a sender from the FIREBASE_SERVICE_ACCOUNT JSON.
func NewSenderFromEnv(ctx context.Context) (*Sender, error) {
	raw := env.GetEnv("FIREBASE_SERVICE_ACCOUNT", "")
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("FIREBASE_SERVICE_ACCOUNT is not configured")
	}

	var account struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal([]byte(raw), &account); err != nil {
		return nil, fmt.Errorf("parse firebase service account: %w", err)
	}
	if account.ProjectID == "" {
		return nil, errors.New("firebase service account missing project_id")
	}

	conf, err := google.JWTConfigFromJSON([]byte(raw), fcmScope)
	if err != nil {
		return nil, fmt.Errorf("load firebase credentials: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, conf.TokenSource(ctx))
	httpClient.Timeout = 15 * time.Second

	return &Sender{
		projectID:  account.ProjectID,
		endpoint:   strings.TrimSpace(env.GetEnv("FCM_API_URL", "https://fcm.googleapis.com")),
		httpClient: httpClient,
	}, nil
}

// SendToTokens fans a notification out to device tokens. Returns how many
// sends succeeded.
func (s *Sender) SendToTokens(ctx context.Context, n Notification, tokens []string) int {
	sent := 0
	for _, token := range tokens {
		if err := s.send(ctx, n, map[string]string{"token": token}); err != nil {
			log.Printf("push send to token failed: %v", err)
			continue
		}
		sent++
	}
	return sent
}

// SendToTopic publishes a notification to a topic.
func (s *Sender) SendToTopic(ctx context.Context, n Notification, topic string) error {
	return s.send(ctx, n, map[string]string{"topic": topic})
}

func (s *Sender) send(ctx context.Context, n Notification, target map[string]string) error {
	message := map[string]interface{}{
		"notification": map[string]string{
			"title": n.Title,
			"body":  n.Body,
		},
	}
	if len(n.Data) > 0 {
		message["data"] = n.Data
	}
	for k, v := range target {
		message[k] = v
	}

	payload, err := json.Marshal(map[string]interface{}{"message": message})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", s.endpoint, s.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("fcm send failed: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
