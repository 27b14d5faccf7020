package billing

import (
	"errors"
	"time"

	"github.com/GymSyncApp/GymSync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetAccount(id string) (*models.Account, error)
	GetAccountByCustomerID(customerID string) (*models.Account, error)
	GetPendingRegistration(id string) (*models.PendingRegistration, error)
	UpsertAccount(account *models.Account) error
	UpdateAccount(id string, updates map[string]interface{}) error
	DeletePendingRegistration(id string) error
	DeleteEmailVerificationCodes(userID string) error
	DeleteArchivedAccount(userID string) error
	UpsertArchivedAccount(archive *models.ArchivedAccount) error
	ArchiveAndSuspend(archive *models.ArchivedAccount, accountID string, now time.Time) error
	DeleteAccountComplete(userID string) error
	ListPushTokens(userIDs []string) ([]string, error)
	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// GetAccount returns the account for an identity, or nil when none exists.
func (r *gormRepository) GetAccount(id string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("id = ?", id).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByCustomerID resolves a stripe customer reference to the local
// account, or nil when no account carries that reference.
func (r *gormRepository) GetAccountByCustomerID(customerID string) (*models.Account, error) {
	var account models.Account
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) GetPendingRegistration(id string) (*models.PendingRegistration, error) {
	var pending models.PendingRegistration
	err := r.db.Where("id = ?", id).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *gormRepository) UpsertAccount(account *models.Account) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name",
			"email",
			"phone",
			"tax_id",
			"gym_name",
			"gym_tax_id",
			"address",
			"plan",
			"stripe_customer_id",
			"email_verified",
			"is_blocked",
			"subscription_status",
			"started_at",
			"expires_at",
			"tolerance_until",
			"purge_at",
			"updated_at",
		}),
	}).Create(account).Error; err != nil {
		return err
	}

	return r.db.Where("id = ?", account.ID).First(account).Error
}

func (r *gormRepository) UpdateAccount(id string, updates map[string]interface{}) error {
	return r.db.Model(&models.Account{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) DeletePendingRegistration(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.PendingRegistration{}).Error
}

func (r *gormRepository) DeleteEmailVerificationCodes(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.EmailVerificationCode{}).Error
}

func (r *gormRepository) DeleteArchivedAccount(userID string) error {
	return r.db.Where("original_id = ?", userID).Delete(&models.ArchivedAccount{}).Error
}

func (r *gormRepository) UpsertArchivedAccount(archive *models.ArchivedAccount) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "original_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name",
			"email",
			"phone",
			"tax_id",
			"gym_name",
			"gym_tax_id",
			"address",
			"plan",
			"stripe_customer_id",
			"started_at",
			"cancel_reason",
			"canceled_at",
			"updated_at",
		}),
	}).Create(archive).Error
}

// ArchiveAndSuspend copies the account into the archive and suspends it in a
// single transaction, so a crash cannot leave one write without the other.
func (r *gormRepository) ArchiveAndSuspend(archive *models.ArchivedAccount, accountID string, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "original_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"full_name",
				"email",
				"phone",
				"tax_id",
				"gym_name",
				"gym_tax_id",
				"address",
				"plan",
				"stripe_customer_id",
				"started_at",
				"cancel_reason",
				"canceled_at",
				"updated_at",
			}),
		}).Create(archive).Error; err != nil {
			return err
		}
		return tx.Model(&models.Account{}).Where("id = ?", accountID).Updates(map[string]interface{}{
			"subscription_status": models.SubscriptionStatusSuspended,
			"is_blocked":          true,
			"updated_at":          now,
		}).Error
	})
}

// DeleteAccountComplete removes every row belonging to an identity in one
// transaction.
func (r *gormRepository) DeleteAccountComplete(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", userID).Delete(&models.Account{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", userID).Delete(&models.PendingRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.EmailVerificationCode{}).Error; err != nil {
			return err
		}
		if err := tx.Where("original_id = ?", userID).Delete(&models.ArchivedAccount{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.PushToken{}).Error
	})
}

func (r *gormRepository) ListPushTokens(userIDs []string) ([]string, error) {
	var tokens []string
	err := r.db.Model(&models.PushToken{}).
		Where("user_id IN ?", userIDs).
		Pluck("fcm_token", &tokens).Error
	return tokens, err
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
