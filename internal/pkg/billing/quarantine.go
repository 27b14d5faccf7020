package billing

import (
	"context"
	"fmt"
	"log"

	"github.com/GymSyncApp/GymSync/app/models"
)

// QuarantineResult reports what a cancellation did upstream.
type QuarantineResult struct {
	CancelledSubscriptions int
}

// Quarantine cancels the account's upstream subscriptions and moves it into
// the archive with access suspended. Data is preserved for later review; the
// account is never hard-deleted here.
//
// Ordering matters: upstream cancellation failures abort before any local
// mutation. Suspending an account while live subscriptions keep billing it is
// the one unacceptable outcome.
func (s *Service) Quarantine(ctx context.Context, userID string, confirmed bool, reason string) (QuarantineResult, error) {
	var result QuarantineResult

	if userID == "" {
		return result, fmt.Errorf("userId is required")
	}
	if !confirmed {
		return result, ErrConfirmationRequired
	}

	account, err := s.repo.GetAccount(userID)
	if err != nil {
		return result, fmt.Errorf("lookup account %s: %w", userID, err)
	}
	if account == nil {
		return result, fmt.Errorf("%w: %s", ErrAccountNotFound, userID)
	}

	if account.StripeCustomerID != "" {
		ids, err := s.gateway.ListActiveSubscriptionIDs(ctx, account.StripeCustomerID)
		if err != nil {
			return result, fmt.Errorf("list subscriptions: %w", err)
		}
		for _, id := range ids {
			if err := s.gateway.CancelSubscription(ctx, id); err != nil {
				return result, fmt.Errorf("cancel upstream subscription: %w", err)
			}
			result.CancelledSubscriptions++
		}
		log.Printf("cancelled %d upstream subscription(s) for %s", result.CancelledSubscriptions, userID)
	} else {
		log.Printf("account %s has no stripe customer, skipping upstream cancellation", userID)
	}

	now := s.now()
	archive := &models.ArchivedAccount{
		OriginalID:       account.ID,
		FullName:         account.FullName,
		Email:            account.Email,
		Phone:            account.Phone,
		TaxID:            account.TaxID,
		GymName:          account.GymName,
		GymTaxID:         account.GymTaxID,
		Address:          account.Address,
		Plan:             account.Plan,
		StripeCustomerID: account.StripeCustomerID,
		StartedAt:        account.StartedAt,
		CancelReason:     reason,
		CanceledAt:       now,
	}

	err = s.repo.ArchiveAndSuspend(archive, account.ID, now)
	if err == nil {
		return result, nil
	}
	log.Printf("atomic archive+suspend failed for %s, falling back to two-step: %v", userID, err)

	// Manual fallback. The archive copy is a backup artifact, so its failure
	// is tolerated; failing to suspend is not, since that would leave the
	// account neither billed nor blocked.
	if err := s.repo.UpsertArchivedAccount(archive); err != nil {
		log.Printf("fallback archive insert failed for %s: %v", userID, err)
	}
	if err := s.repo.UpdateAccount(account.ID, map[string]interface{}{
		"subscription_status": models.SubscriptionStatusSuspended,
		"is_blocked":          true,
		"updated_at":          now,
	}); err != nil {
		return result, fmt.Errorf("suspend account %s: %w", userID, err)
	}
	return result, nil
}
