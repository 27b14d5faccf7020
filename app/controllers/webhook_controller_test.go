package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GymSyncApp/GymSync/app/models"
	"github.com/GymSyncApp/GymSync/internal/pkg/billing"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

const testWebhookSecret = "whsec_test_123"

// stubRepository is the minimal in-memory store the webhook flow touches.
type stubRepository struct {
	accounts  map[string]*models.Account
	events    map[string]*models.WebhookEvent
	nextID    uint
	upsertErr error

	upsertCalls int
}

func newStubRepository() *stubRepository {
	return &stubRepository{
		accounts: make(map[string]*models.Account),
		events:   make(map[string]*models.WebhookEvent),
	}
}

func (s *stubRepository) GetAccount(id string) (*models.Account, error) {
	if acc, ok := s.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepository) GetAccountByCustomerID(customerID string) (*models.Account, error) {
	for _, acc := range s.accounts {
		if acc.StripeCustomerID == customerID {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepository) GetPendingRegistration(id string) (*models.PendingRegistration, error) {
	return nil, nil
}

func (s *stubRepository) UpsertAccount(account *models.Account) error {
	s.upsertCalls++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *stubRepository) UpdateAccount(id string, updates map[string]interface{}) error {
	return nil
}

func (s *stubRepository) DeletePendingRegistration(id string) error    { return nil }
func (s *stubRepository) DeleteEmailVerificationCodes(id string) error { return nil }
func (s *stubRepository) DeleteArchivedAccount(id string) error        { return nil }

func (s *stubRepository) UpsertArchivedAccount(archive *models.ArchivedAccount) error { return nil }

func (s *stubRepository) ArchiveAndSuspend(archive *models.ArchivedAccount, accountID string, now time.Time) error {
	return nil
}

func (s *stubRepository) DeleteAccountComplete(userID string) error { return nil }

func (s *stubRepository) ListPushTokens(userIDs []string) ([]string, error) { return nil, nil }

func (s *stubRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := s.events[key]; ok {
		copied := *existing
		return false, &copied, nil
	}
	s.nextID++
	event.ID = s.nextID
	copied := *event
	s.events[key] = &copied
	stored := copied
	return true, &stored, nil
}

func (s *stubRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range s.events {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return nil
}

type stubGateway struct{}

func (stubGateway) ListActiveSubscriptionIDs(ctx context.Context, customerID string) ([]string, error) {
	return nil, nil
}
func (stubGateway) CancelSubscription(ctx context.Context, subscriptionID string) error { return nil }
func (stubGateway) CreateCheckoutSession(ctx context.Context, in billing.CheckoutSessionInput) (string, error) {
	return "", nil
}

type stubIdentity struct{}

func (stubIdentity) UpdateUserEmail(ctx context.Context, userID, email string) error { return nil }
func (stubIdentity) DeleteUser(ctx context.Context, userID string) error             { return nil }

func newWebhookTestApp(repo *stubRepository) *fiber.App {
	svc := billing.NewService(repo, stubGateway{}, stubIdentity{})
	wc := NewWebhookController(svc, testWebhookSecret)

	app := fiber.New()
	app.Post("/webhooks/stripe", wc.HandleStripeWebhook)
	return app
}

func checkoutEventPayload(t *testing.T, eventID, userID string) []byte {
	t.Helper()

	event := map[string]interface{}{
		"id":   eventID,
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             "cs_1",
				"customer":       "cus_123",
				"payment_status": "paid",
				"metadata": map[string]interface{}{
					"user_id_auth": userID,
					"nome":         "Maria Silva",
					"userEmail":    "maria@academia.com",
				},
			},
		},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return payload
}

func signedWebhookRequest(payload []byte, secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}

func TestHandleStripeWebhookMissingSignature(t *testing.T) {
	t.Parallel()

	repo := newStubRepository()
	app := newWebhookTestApp(repo)

	payload := checkoutEventPayload(t, "evt_nosig", "11111111-1111-4111-8111-111111111111")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Rejected deliveries leave no trace.
	assert.Empty(t, repo.events)
	assert.Empty(t, repo.accounts)
}

func TestHandleStripeWebhookInvalidSignature(t *testing.T) {
	t.Parallel()

	repo := newStubRepository()
	app := newWebhookTestApp(repo)

	payload := checkoutEventPayload(t, "evt_badsig", "11111111-1111-4111-8111-111111111111")
	req := signedWebhookRequest(payload, "whsec_wrong")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Webhook Error")

	assert.Empty(t, repo.events)
	assert.Empty(t, repo.accounts)
	assert.Zero(t, repo.upsertCalls)
}

func TestHandleStripeWebhookMissingSecret(t *testing.T) {
	t.Parallel()

	repo := newStubRepository()
	svc := billing.NewService(repo, stubGateway{}, stubIdentity{})
	wc := NewWebhookController(svc, "")

	app := fiber.New()
	app.Post("/webhooks/stripe", wc.HandleStripeWebhook)

	payload := checkoutEventPayload(t, "evt_nosecret", "11111111-1111-4111-8111-111111111111")
	resp, err := app.Test(signedWebhookRequest(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHandleStripeWebhookValidDelivery(t *testing.T) {
	t.Parallel()

	repo := newStubRepository()
	app := newWebhookTestApp(repo)
	userID := "22222222-2222-4222-8222-222222222222"

	payload := checkoutEventPayload(t, "evt_ok", userID)
	resp, err := app.Test(signedWebhookRequest(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, repo.accounts[userID])
	assert.Equal(t, "Maria Silva", repo.accounts[userID].FullName)

	stored := repo.events[billing.ProviderStripe+":evt_ok"]
	require.NotNil(t, stored)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Empty(t, stored.ProcessingError)
}

func TestHandleStripeWebhookDuplicateAfterSuccess(t *testing.T) {
	t.Parallel()

	repo := newStubRepository()
	app := newWebhookTestApp(repo)
	userID := "33333333-3333-4333-8333-333333333333"

	payload := checkoutEventPayload(t, "evt_dup", userID)
	resp, err := app.Test(signedWebhookRequest(payload, testWebhookSecret))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1, repo.upsertCalls)

	resp, err = app.Test(signedWebhookRequest(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"duplicate":true`)

	// The successful first run is not repeated.
	assert.Equal(t, 1, repo.upsertCalls)
}

func TestHandleStripeWebhookRedeliveryAfterFailure(t *testing.T) {
	t.Parallel()

	repo := newStubRepository()
	app := newWebhookTestApp(repo)
	userID := "44444444-4444-4444-8444-444444444444"

	// First delivery hits a transient datastore failure and must surface as
	// 500 so the provider redelivers.
	repo.upsertErr = assert.AnError
	payload := checkoutEventPayload(t, "evt_retry", userID)
	resp, err := app.Test(signedWebhookRequest(payload, testWebhookSecret))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Nil(t, repo.accounts[userID])

	// The redelivery of the same event id must reprocess, not be waved
	// through as a duplicate of the failed attempt.
	repo.upsertErr = nil
	resp, err = app.Test(signedWebhookRequest(payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"duplicate"`)

	require.NotNil(t, repo.accounts[userID])
	assert.Equal(t, models.SubscriptionStatusActive, repo.accounts[userID].SubscriptionStatus)

	stored := repo.events[billing.ProviderStripe+":evt_retry"]
	require.NotNil(t, stored)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Empty(t, stored.ProcessingError)
}
