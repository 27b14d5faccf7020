package billing

import (
	"context"
	"errors"
	"time"

	"github.com/GymSyncApp/GymSync/app/models"
)

// fakeRepository is an in-memory Repository used by the service tests.
type fakeRepository struct {
	accounts       map[string]*models.Account
	pending        map[string]*models.PendingRegistration
	archived       map[string]*models.ArchivedAccount
	webhookEvents  map[string]*models.WebhookEvent
	pushTokens     map[string][]string
	nextWebhookID  uint
	upsertErr      error
	archiveTxErr   error
	upsertArchErr  error
	updateErr      error
	deletedAccount string

	upsertCalls     int
	updateCalls     []map[string]interface{}
	archiveTxCalls  int
	fallbackUpserts int
	pendingDeletes  []string
	codeDeletes     []string
	archiveDeletes  []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accounts:      make(map[string]*models.Account),
		pending:       make(map[string]*models.PendingRegistration),
		archived:      make(map[string]*models.ArchivedAccount),
		webhookEvents: make(map[string]*models.WebhookEvent),
		pushTokens:    make(map[string][]string),
	}
}

func (f *fakeRepository) GetAccount(id string) (*models.Account, error) {
	if acc, ok := f.accounts[id]; ok {
		copied := *acc
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepository) GetAccountByCustomerID(customerID string) (*models.Account, error) {
	for _, acc := range f.accounts {
		if acc.StripeCustomerID == customerID {
			copied := *acc
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) GetPendingRegistration(id string) (*models.PendingRegistration, error) {
	if p, ok := f.pending[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepository) UpsertAccount(account *models.Account) error {
	f.upsertCalls++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeRepository) UpdateAccount(id string, updates map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	acc, ok := f.accounts[id]
	if !ok {
		return errors.New("account not found")
	}
	f.updateCalls = append(f.updateCalls, updates)
	if v, ok := updates["subscription_status"].(string); ok {
		acc.SubscriptionStatus = v
	}
	if v, ok := updates["is_blocked"].(bool); ok {
		acc.IsBlocked = v
	}
	if v, ok := updates["started_at"].(time.Time); ok {
		acc.StartedAt = &v
	}
	if v, ok := updates["expires_at"].(time.Time); ok {
		acc.ExpiresAt = &v
	}
	if v, ok := updates["tolerance_until"].(time.Time); ok {
		acc.ToleranceUntil = &v
	}
	if v, ok := updates["purge_at"].(time.Time); ok {
		acc.PurgeAt = &v
	}
	return nil
}

func (f *fakeRepository) DeletePendingRegistration(id string) error {
	f.pendingDeletes = append(f.pendingDeletes, id)
	delete(f.pending, id)
	return nil
}

func (f *fakeRepository) DeleteEmailVerificationCodes(userID string) error {
	f.codeDeletes = append(f.codeDeletes, userID)
	return nil
}

func (f *fakeRepository) DeleteArchivedAccount(userID string) error {
	f.archiveDeletes = append(f.archiveDeletes, userID)
	delete(f.archived, userID)
	return nil
}

func (f *fakeRepository) UpsertArchivedAccount(archive *models.ArchivedAccount) error {
	f.fallbackUpserts++
	if f.upsertArchErr != nil {
		return f.upsertArchErr
	}
	copied := *archive
	f.archived[archive.OriginalID] = &copied
	return nil
}

func (f *fakeRepository) ArchiveAndSuspend(archive *models.ArchivedAccount, accountID string, now time.Time) error {
	f.archiveTxCalls++
	if f.archiveTxErr != nil {
		return f.archiveTxErr
	}
	copied := *archive
	f.archived[archive.OriginalID] = &copied
	acc, ok := f.accounts[accountID]
	if !ok {
		return errors.New("account not found")
	}
	acc.SubscriptionStatus = models.SubscriptionStatusSuspended
	acc.IsBlocked = true
	return nil
}

func (f *fakeRepository) DeleteAccountComplete(userID string) error {
	f.deletedAccount = userID
	delete(f.accounts, userID)
	delete(f.pending, userID)
	delete(f.archived, userID)
	delete(f.pushTokens, userID)
	return nil
}

func (f *fakeRepository) ListPushTokens(userIDs []string) ([]string, error) {
	var tokens []string
	for _, id := range userIDs {
		tokens = append(tokens, f.pushTokens[id]...)
	}
	return tokens, nil
}

func (f *fakeRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := f.webhookEvents[key]; ok {
		return false, existing, nil
	}
	f.nextWebhookID++
	event.ID = f.nextWebhookID
	copied := *event
	f.webhookEvents[key] = &copied
	return true, &copied, nil
}

func (f *fakeRepository) MarkWebhookProcessed(id uint, processingError string) error {
	for _, ev := range f.webhookEvents {
		if ev.ID == id {
			now := time.Now()
			ev.ProcessedAt = &now
			ev.ProcessingError = processingError
			return nil
		}
	}
	return errors.New("webhook event not found")
}

// fakeGateway is a scripted PaymentGateway.
type fakeGateway struct {
	subscriptions []string
	listErr       error
	cancelErr     error
	cancelled     []string
	checkoutURL   string
	checkoutErr   error
	checkoutIn    CheckoutSessionInput
}

func (f *fakeGateway) ListActiveSubscriptionIDs(ctx context.Context, customerID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.subscriptions, nil
}

func (f *fakeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, subscriptionID)
	return nil
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error) {
	f.checkoutIn = in
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return f.checkoutURL, nil
}

// fakeIdentity records admin calls against the identity provider.
type fakeIdentity struct {
	emailUpdates map[string]string
	updateErr    error
	deleted      []string
	deleteErr    error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{emailUpdates: make(map[string]string)}
}

func (f *fakeIdentity) UpdateUserEmail(ctx context.Context, userID, email string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.emailUpdates[userID] = email
	return nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func newTestService(repo *fakeRepository, gateway *fakeGateway, identity *fakeIdentity, now time.Time) *Service {
	svc := NewService(repo, gateway, identity)
	svc.now = func() time.Time { return now }
	return svc
}
