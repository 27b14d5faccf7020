package models

import "time"

// Subscription lifecycle states for gym admin accounts.
const (
	SubscriptionStatusActive      = "active"
	SubscriptionStatusGracePeriod = "grace_period"
	SubscriptionStatusSuspended   = "suspended"
)

// Profile defaults applied when no source provides a usable value.
const (
	DefaultFullName = "Admin"
	DefaultPhone    = "00"
	DefaultTaxID    = "00"
	DefaultGymName  = "Academia"
	DefaultGymTaxID = "00"
	DefaultAddress  = "Endereço"
	DefaultPlan     = "Prata"
)

// Account is the durable projection of a paying gym administrator. The ID is
// the identity provider's user id and is never regenerated; webhook
// reconciliation only ever upserts by this key.
type Account struct {
	ID                 string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName           string     `gorm:"type:varchar(150)" json:"full_name"`
	Email              string     `gorm:"type:varchar(200);index" json:"email"`
	Phone              string     `gorm:"type:varchar(30)" json:"phone"`
	TaxID              string     `gorm:"type:varchar(20)" json:"tax_id"`
	GymName            string     `gorm:"type:varchar(150)" json:"gym_name"`
	GymTaxID           string     `gorm:"type:varchar(20)" json:"gym_tax_id"`
	Address            string     `gorm:"type:varchar(255)" json:"address"`
	Plan               string     `gorm:"type:varchar(50)" json:"plan"`
	StripeCustomerID   string     `gorm:"type:varchar(191);index" json:"stripe_customer_id"`
	EmailVerified      bool       `gorm:"default:false" json:"email_verified"`
	IsBlocked          bool       `gorm:"default:false" json:"is_blocked"`
	SubscriptionStatus string     `gorm:"type:varchar(20);default:'active';index" json:"subscription_status"`
	StartedAt          *time.Time `gorm:"type:timestamp;default:null" json:"started_at,omitempty"`
	ExpiresAt          *time.Time `gorm:"type:timestamp;default:null" json:"expires_at,omitempty"`
	ToleranceUntil     *time.Time `gorm:"type:timestamp;default:null" json:"tolerance_until,omitempty"`
	PurgeAt            *time.Time `gorm:"type:timestamp;default:null" json:"purge_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
