package models

import "time"

// ArchivedAccount is a point-in-time backup copy of an Account taken when the
// account is quarantined. Upserts are keyed by OriginalID to avoid duplicate
// rows; the entry is removed when the account reactivates.
type ArchivedAccount struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	OriginalID       string     `gorm:"type:varchar(36);uniqueIndex" json:"original_id"`
	FullName         string     `gorm:"type:varchar(150)" json:"full_name"`
	Email            string     `gorm:"type:varchar(200)" json:"email"`
	Phone            string     `gorm:"type:varchar(30)" json:"phone"`
	TaxID            string     `gorm:"type:varchar(20)" json:"tax_id"`
	GymName          string     `gorm:"type:varchar(150)" json:"gym_name"`
	GymTaxID         string     `gorm:"type:varchar(20)" json:"gym_tax_id"`
	Address          string     `gorm:"type:varchar(255)" json:"address"`
	Plan             string     `gorm:"type:varchar(50)" json:"plan"`
	StripeCustomerID string     `gorm:"type:varchar(191)" json:"stripe_customer_id"`
	StartedAt        *time.Time `gorm:"type:timestamp;default:null" json:"started_at,omitempty"`
	CancelReason     string     `gorm:"type:varchar(255)" json:"cancel_reason"`
	CanceledAt       time.Time  `gorm:"type:timestamp" json:"canceled_at"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
