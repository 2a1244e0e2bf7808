package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aylinky/jyotir-backend/internal/dto"
	"github.com/aylinky/jyotir-backend/internal/models"
)

// SubscriptionService keeps the user's premium window in sync with
// RevenueCat events. Cancellation keeps access until the paid period
// ends; expiration is the hard boundary that downgrades the tier.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) HandleWebhookEvent(event *dto.RevenueCatEvent) error {
	switch event.Type {
	case "INITIAL_PURCHASE", "RENEWAL", "UNCANCELLATION":
		return s.activate(event)
	case "CANCELLATION":
		// Auto-renew turned off; the window stays open until the
		// already-paid period end, so nothing changes here.
		return nil
	case "EXPIRATION":
		return s.expire(event)
	default:
		return nil
	}
}

func (s *SubscriptionService) activate(event *dto.RevenueCatEvent) error {
	user, err := s.findSubscriber(event.AppUserID)
	if err != nil {
		return err
	}

	return s.db.Model(user).Updates(map[string]interface{}{
		"subscription_tier":      models.TierPremium,
		"subscription_end_date":  msToTime(event.ExpirationAtMs),
		"external_subscriber_id": event.AppUserID,
	}).Error
}

func (s *SubscriptionService) expire(event *dto.RevenueCatEvent) error {
	user, err := s.findSubscriber(event.AppUserID)
	if err != nil {
		return err
	}

	return s.db.Model(user).Updates(map[string]interface{}{
		"subscription_tier":     models.TierFree,
		"subscription_end_date": nil,
	}).Error
}

// findSubscriber resolves the RevenueCat app user id, which we set to
// the user's UUID on the client; the external_subscriber_id column
// covers users who subscribed before that convention.
func (s *SubscriptionService) findSubscriber(appUserID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("id::text = ? OR external_subscriber_id = ?", appUserID, appUserID).First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("subscriber %s not found: %w", appUserID, err)
	}
	return &user, nil
}

func msToTime(ms int64) time.Time {
	return time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond))
}
