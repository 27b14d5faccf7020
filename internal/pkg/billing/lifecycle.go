package billing

import (
	"time"

	"github.com/GymSyncApp/GymSync/app/models"
)

// Hybrid subscription window: a paid period of 30 days, one day of tolerance
// on top, and a purge deadline well after expiry. All three are recomputed
// together on every activation, never individually.
const (
	subscriptionDays = 30
	toleranceDays    = 31
	purgeDays        = 91

	// Purge deadline applied when the provider reports an explicit
	// subscription cancellation.
	cancelPurgeDays = 60
)

// PaymentStatusPaid is the only checkout payment status that activates an
// account. Asynchronous payment methods (boleto) complete the checkout step
// before funds clear and must not activate anything.
const PaymentStatusPaid = "paid"

// SubscriptionWindow is the set of lifecycle dates recomputed on activation.
type SubscriptionWindow struct {
	StartedAt      time.Time
	ExpiresAt      time.Time
	ToleranceUntil time.Time
	PurgeAt        time.Time
}

// ActivationWindow computes the full date window for an activation at the
// given instant.
func ActivationWindow(now time.Time) SubscriptionWindow {
	return SubscriptionWindow{
		StartedAt:      now,
		ExpiresAt:      now.AddDate(0, 0, subscriptionDays),
		ToleranceUntil: now.AddDate(0, 0, toleranceDays),
		PurgeAt:        now.AddDate(0, 0, purgeDays),
	}
}

// CancellationPurgeAt computes the purge deadline for an explicit provider
// cancellation. Other lifecycle dates are left untouched in that transition.
func CancellationPurgeAt(now time.Time) time.Time {
	return now.AddDate(0, 0, cancelPurgeDays)
}

// StatusFromStripe maps a provider-side subscription status to the local
// lifecycle state. The mapping is computed from the incoming signal alone,
// with no prior-state inspection, which keeps redelivered events idempotent.
func StatusFromStripe(stripeStatus string) (status string, blocked bool) {
	switch stripeStatus {
	case "past_due":
		return models.SubscriptionStatusGracePeriod, false
	case "unpaid", "canceled":
		return models.SubscriptionStatusSuspended, true
	default:
		return models.SubscriptionStatusActive, false
	}
}
