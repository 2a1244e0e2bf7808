package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"size:20;default:'user'" json:"role"`
	AppleUserID  *string   `gorm:"size:255;index" json:"-"`
	AuthProvider string    `gorm:"size:50;default:'email'" json:"-"`

	// Subscription window. Maintained by RevenueCat webhook events;
	// expiry is a hard boundary with no grace period.
	SubscriptionTier     string     `gorm:"size:20;default:'free'" json:"subscription_tier"`
	SubscriptionEndDate  *time.Time `json:"subscription_end_date,omitempty"`
	ExternalSubscriberID string     `gorm:"size:255;index" json:"-"`

	// Free-tier daily quota. DailyQuotaUsed is meaningful only relative
	// to LastQuotaResetAt's calendar day in the configured quota zone;
	// once the day rolls over the stored count is logically zero until
	// the next consume writes the reset.
	DailyQuotaUsed   int       `gorm:"default:0" json:"daily_quota_used"`
	LastQuotaResetAt time.Time `json:"last_quota_reset_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SubscriptionActive reports whether the premium entitlement covers the
// given instant.
func (u *User) SubscriptionActive(now time.Time) bool {
	return u.SubscriptionTier == TierPremium &&
		u.SubscriptionEndDate != nil &&
		now.Before(*u.SubscriptionEndDate)
}
