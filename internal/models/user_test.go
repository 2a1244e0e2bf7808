package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionActive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name string
		user User
		want bool
	}{
		{"premium with future end date", User{SubscriptionTier: TierPremium, SubscriptionEndDate: &future}, true},
		{"premium already expired", User{SubscriptionTier: TierPremium, SubscriptionEndDate: &past}, false},
		{"premium expiring exactly now", User{SubscriptionTier: TierPremium, SubscriptionEndDate: &now}, false},
		{"premium without end date", User{SubscriptionTier: TierPremium}, false},
		{"free tier with future end date", User{SubscriptionTier: TierFree, SubscriptionEndDate: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.SubscriptionActive(now))
		})
	}
}
