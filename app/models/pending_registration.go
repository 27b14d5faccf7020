package models

import "time"

// PendingRegistration is a staging row captured by the signup form before
// payment completes. It shares the identity provider's user id with Account
// and is consumed (deleted) once a reconciliation used it as a fallback
// source.
type PendingRegistration struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName  string    `gorm:"type:varchar(150)" json:"full_name"`
	Email     string    `gorm:"type:varchar(200)" json:"email"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	TaxID     string    `gorm:"type:varchar(20)" json:"tax_id"`
	GymName   string    `gorm:"type:varchar(150)" json:"gym_name"`
	GymTaxID  string    `gorm:"type:varchar(20)" json:"gym_tax_id"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
