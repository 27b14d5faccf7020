package models

import "time"

// PushToken links an identity to a registered FCM device token.
type PushToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	FCMToken  string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"fcm_token"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
