package billing

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/GymSyncApp/GymSync/app/models"
	"golang.org/x/sync/errgroup"
)

// IdentityAdmin is the slice of the identity provider's admin API the
// reconciler needs.
type IdentityAdmin interface {
	UpdateUserEmail(ctx context.Context, userID, email string) error
	DeleteUser(ctx context.Context, userID string) error
}

// Service reconciles payment provider events into the account store and
// orchestrates cancellation/quarantine.
type Service struct {
	repo     Repository
	gateway  PaymentGateway
	identity IdentityAdmin
	now      func() time.Time
}

// NewService creates a billing service from injected dependencies.
func NewService(repo Repository, gateway PaymentGateway, identity IdentityAdmin) *Service {
	return &Service{
		repo:     repo,
		gateway:  gateway,
		identity: identity,
		now:      time.Now,
	}
}

// RecordWebhookEvent persists webhook payloads idempotently. The returned
// bool reports whether this delivery was the first one.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	event := &models.WebhookEvent{
		Provider:        in.Provider,
		ProviderEventID: in.ProviderEventID,
		EventType:       in.EventType,
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional
// error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// HandleCheckoutCompleted reconciles a completed checkout into the account
// store. Sessions whose payment is not confirmed yet are acknowledged and
// ignored: boleto checkouts complete before funds clear, and activating them
// early would hand out access that was never paid for.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, session CheckoutSession) error {
	if session.PaymentStatus != PaymentStatusPaid {
		log.Printf("checkout %s ignored: payment_status=%q", session.ID, session.PaymentStatus)
		return nil
	}

	meta := MetadataFromMap(session.Metadata)
	if meta.UserID == "" {
		return fmt.Errorf("checkout %s: %w", session.ID, ErrMissingIdentity)
	}

	// Deferred-email-capture flow: push the real email into the identity
	// provider first. Failure here (address already claimed) must not stop
	// reconciliation; the account still gets the best available email below.
	if meta.RealEmailToUpdate != "" {
		if err := s.identity.UpdateUserEmail(ctx, meta.UserID, meta.RealEmailToUpdate); err != nil {
			log.Printf("identity email update failed for %s: %v", meta.UserID, err)
		}
	}

	var (
		current *models.Account
		pending *models.PendingRegistration
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.repo.GetAccount(meta.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.repo.GetPendingRegistration(meta.UserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load account state for %s: %w", meta.UserID, err)
	}

	cur := models.Account{}
	if current != nil {
		cur = *current
	}
	stg := models.PendingRegistration{}
	if pending != nil {
		stg = *pending
	}

	now := s.now()
	window := ActivationWindow(now)
	account := &models.Account{
		ID:                 meta.UserID,
		FullName:           ResolveField(meta.FullName, stg.FullName, cur.FullName, models.DefaultFullName),
		Email:              ResolveEmail(session.VerifiedEmail(), meta.Email, stg.Email, cur.Email),
		Phone:              ResolveField(meta.Phone, stg.Phone, cur.Phone, models.DefaultPhone),
		TaxID:              ResolveField(meta.TaxID, stg.TaxID, cur.TaxID, models.DefaultTaxID),
		GymName:            ResolveField(meta.GymName, stg.GymName, cur.GymName, models.DefaultGymName),
		GymTaxID:           ResolveField(meta.GymTaxID, stg.GymTaxID, cur.GymTaxID, models.DefaultGymTaxID),
		Address:            ResolveField(meta.Address, stg.Address, cur.Address, models.DefaultAddress),
		Plan:               ResolvePlan(meta.Plan, cur.Plan, models.DefaultPlan),
		StripeCustomerID:   ResolveCustomerID(session.Customer, cur.StripeCustomerID),
		EmailVerified:      true,
		IsBlocked:          false,
		SubscriptionStatus: models.SubscriptionStatusActive,
		StartedAt:          &window.StartedAt,
		ExpiresAt:          &window.ExpiresAt,
		ToleranceUntil:     &window.ToleranceUntil,
		PurgeAt:            &window.PurgeAt,
	}

	if err := s.repo.UpsertAccount(account); err != nil {
		return fmt.Errorf("upsert account %s: %w", meta.UserID, err)
	}

	// Consumed staging data and any quarantine leftovers are cleaned up best
	// effort; the account write above is the source of truth.
	if err := s.repo.DeletePendingRegistration(meta.UserID); err != nil {
		log.Printf("cleanup pending registration %s: %v", meta.UserID, err)
	}
	if err := s.repo.DeleteEmailVerificationCodes(meta.UserID); err != nil {
		log.Printf("cleanup verification codes %s: %v", meta.UserID, err)
	}
	if err := s.repo.DeleteArchivedAccount(meta.UserID); err != nil {
		log.Printf("cleanup archived account %s: %v", meta.UserID, err)
	}

	log.Printf("account %s reconciled: status=active expires=%s", account.ID, window.ExpiresAt.Format(time.RFC3339))
	return nil
}

// HandleInvoicePaymentFailed moves the affected account into the grace
// period. Lifecycle dates are left untouched; the provider retries the charge
// on its own schedule.
func (s *Service) HandleInvoicePaymentFailed(ctx context.Context, invoice Invoice) error {
	_ = ctx
	account, err := s.repo.GetAccountByCustomerID(invoice.Customer)
	if err != nil {
		return fmt.Errorf("lookup account by customer %s: %w", invoice.Customer, err)
	}
	if account == nil {
		log.Printf("invoice payment failed for unknown customer %s, ignoring", invoice.Customer)
		return nil
	}

	// Grace period is a warning state, not a lockout: a previously suspended
	// account moving here must be unblocked again.
	return s.repo.UpdateAccount(account.ID, map[string]interface{}{
		"subscription_status": models.SubscriptionStatusGracePeriod,
		"is_blocked":          false,
		"updated_at":          s.now(),
	})
}

// HandleSubscriptionUpdated applies an external subscription status change.
// A return to active recomputes the full date window and clears any
// quarantine entry.
func (s *Service) HandleSubscriptionUpdated(ctx context.Context, sub Subscription) error {
	_ = ctx
	account, err := s.repo.GetAccountByCustomerID(sub.Customer)
	if err != nil {
		return fmt.Errorf("lookup account by customer %s: %w", sub.Customer, err)
	}
	if account == nil {
		log.Printf("subscription update for unknown customer %s, ignoring", sub.Customer)
		return nil
	}

	status, blocked := StatusFromStripe(sub.Status)
	now := s.now()
	updates := map[string]interface{}{
		"subscription_status": status,
		"is_blocked":          blocked,
		"updated_at":          now,
	}

	if sub.Status == "active" {
		window := ActivationWindow(now)
		updates["started_at"] = window.StartedAt
		updates["expires_at"] = window.ExpiresAt
		updates["tolerance_until"] = window.ToleranceUntil
		updates["purge_at"] = window.PurgeAt

		if err := s.repo.DeleteArchivedAccount(account.ID); err != nil {
			log.Printf("cleanup archived account %s on reactivation: %v", account.ID, err)
		}
	}

	if err := s.repo.UpdateAccount(account.ID, updates); err != nil {
		return fmt.Errorf("update account %s: %w", account.ID, err)
	}
	log.Printf("account %s subscription updated: %s -> %s", account.ID, sub.Status, status)
	return nil
}

// HandleSubscriptionDeleted suspends the account after an explicit provider
// cancellation and schedules the purge. Other lifecycle dates keep their
// prior values.
func (s *Service) HandleSubscriptionDeleted(ctx context.Context, sub Subscription) error {
	_ = ctx
	account, err := s.repo.GetAccountByCustomerID(sub.Customer)
	if err != nil {
		return fmt.Errorf("lookup account by customer %s: %w", sub.Customer, err)
	}
	if account == nil {
		log.Printf("subscription delete for unknown customer %s, ignoring", sub.Customer)
		return nil
	}

	now := s.now()
	return s.repo.UpdateAccount(account.ID, map[string]interface{}{
		"subscription_status": models.SubscriptionStatusSuspended,
		"is_blocked":          true,
		"purge_at":            CancellationPurgeAt(now),
		"updated_at":          now,
	})
}

// PaymentConfirmed reports whether the identity has a reconciled account.
// Client polling loops call this after redirecting into checkout.
func (s *Service) PaymentConfirmed(ctx context.Context, userID string) (bool, error) {
	_ = ctx
	account, err := s.repo.GetAccount(userID)
	if err != nil {
		return false, err
	}
	return account != nil, nil
}

// DeleteAccount removes every local row for the identity and then deletes the
// identity provider user.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.repo.DeleteAccountComplete(userID); err != nil {
		return fmt.Errorf("delete account rows for %s: %w", userID, err)
	}
	if err := s.identity.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete identity user %s: %w", userID, err)
	}
	return nil
}
