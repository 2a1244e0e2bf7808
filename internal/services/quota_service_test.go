package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aylinky/jyotir-backend/internal/models"
)

const testLimit = 5

func TestSameQuotaDay(t *testing.T) {
	utc := time.UTC
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name string
		a, b time.Time
		loc  *time.Location
		want bool
	}{
		{
			"same utc day",
			time.Date(2025, 6, 15, 0, 30, 0, 0, utc),
			time.Date(2025, 6, 15, 23, 30, 0, 0, utc),
			utc, true,
		},
		{
			"straddles utc midnight",
			time.Date(2025, 6, 15, 23, 59, 0, 0, utc),
			time.Date(2025, 6, 16, 0, 1, 0, 0, utc),
			utc, false,
		},
		{
			// 23:00 UTC and 01:00 UTC next day are both the same day
			// in Kolkata (UTC+5:30): 04:30 and 06:30.
			"same day in quota zone despite utc rollover",
			time.Date(2025, 6, 15, 23, 0, 0, 0, utc),
			time.Date(2025, 6, 16, 1, 0, 0, 0, utc),
			kolkata, true,
		},
		{
			// 18:00 and 19:00 UTC straddle Kolkata midnight (23:30 vs
			// 00:30 next day).
			"different day in quota zone within same utc day",
			time.Date(2025, 6, 15, 18, 0, 0, 0, utc),
			time.Date(2025, 6, 15, 19, 0, 0, 0, utc),
			kolkata, false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameQuotaDay(tt.a, tt.b, tt.loc))
		})
	}
}

func TestCanConsume_FreeTier(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	t.Run("under the limit today", func(t *testing.T) {
		u := &models.User{SubscriptionTier: models.TierFree, DailyQuotaUsed: 4, LastQuotaResetAt: now.Add(-time.Hour)}
		assert.True(t, CanConsume(u, now, testLimit, time.UTC))
		assert.Equal(t, 1, Remaining(u, now, testLimit, time.UTC))
	})

	t.Run("at the limit today", func(t *testing.T) {
		u := &models.User{SubscriptionTier: models.TierFree, DailyQuotaUsed: testLimit, LastQuotaResetAt: now.Add(-time.Hour)}
		assert.False(t, CanConsume(u, now, testLimit, time.UTC))
		assert.Equal(t, 0, Remaining(u, now, testLimit, time.UTC))
	})

	t.Run("at the limit but reset pending", func(t *testing.T) {
		u := &models.User{SubscriptionTier: models.TierFree, DailyQuotaUsed: testLimit, LastQuotaResetAt: yesterday}
		assert.True(t, CanConsume(u, now, testLimit, time.UTC), "day boundary makes the stored count logically zero")
		assert.Equal(t, testLimit, Remaining(u, now, testLimit, time.UTC))
		assert.Equal(t, 0, EffectiveUsed(u, now, time.UTC))
	})
}

func TestCanConsume_PremiumBypass(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	t.Run("active subscription ignores the counter", func(t *testing.T) {
		u := &models.User{
			SubscriptionTier:    models.TierPremium,
			SubscriptionEndDate: &future,
			DailyQuotaUsed:      999,
			LastQuotaResetAt:    now.Add(-time.Hour),
		}
		assert.True(t, CanConsume(u, now, testLimit, time.UTC))
		assert.Equal(t, -1, Remaining(u, now, testLimit, time.UTC))
	})

	t.Run("expired subscription falls back to the counter", func(t *testing.T) {
		u := &models.User{
			SubscriptionTier:    models.TierPremium,
			SubscriptionEndDate: &past,
			DailyQuotaUsed:      testLimit,
			LastQuotaResetAt:    now.Add(-time.Hour),
		}
		assert.False(t, CanConsume(u, now, testLimit, time.UTC))
	})
}
