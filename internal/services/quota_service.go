package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aylinky/jyotir-backend/internal/config"
	"github.com/aylinky/jyotir-backend/internal/models"
)

// QuotaService meters free-tier actions. Premium users with an active
// subscription window bypass the counter entirely; for everyone else
// the count resets on calendar-day boundaries in the configured quota
// timezone.
type QuotaService struct {
	db    *gorm.DB
	limit int
	loc   *time.Location
}

func NewQuotaService(db *gorm.DB, cfg *config.Config) *QuotaService {
	return &QuotaService{db: db, limit: cfg.FreeTierDailyLimit, loc: cfg.QuotaTimezone}
}

// SameQuotaDay reports whether a and b fall on the same calendar day in
// the quota zone.
func SameQuotaDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// EffectiveUsed is the count that actually gates the user right now: a
// stale LastQuotaResetAt means the persisted count is logically zero
// until the next consume writes the reset.
func EffectiveUsed(u *models.User, now time.Time, loc *time.Location) int {
	if !SameQuotaDay(u.LastQuotaResetAt, now, loc) {
		return 0
	}
	return u.DailyQuotaUsed
}

// CanConsume decides without writing anything.
func CanConsume(u *models.User, now time.Time, limit int, loc *time.Location) bool {
	if u.SubscriptionActive(now) {
		return true
	}
	return EffectiveUsed(u, now, loc) < limit
}

// Remaining returns how many metered actions the user has left today;
// -1 means unlimited.
func Remaining(u *models.User, now time.Time, limit int, loc *time.Location) int {
	if u.SubscriptionActive(now) {
		return -1
	}
	left := limit - EffectiveUsed(u, now, loc)
	if left < 0 {
		left = 0
	}
	return left
}

func (s *QuotaService) CanConsume(u *models.User, now time.Time) bool {
	return CanConsume(u, now, s.limit, s.loc)
}

func (s *QuotaService) Remaining(u *models.User, now time.Time) int {
	return Remaining(u, now, s.limit, s.loc)
}

// Consume records one metered action. The write is a conditional
// UPDATE guarded by the previously observed counter state, so two
// concurrent requests can never both take the last slot; on a guard
// miss the user row is reloaded and the decision re-made.
func (s *QuotaService) Consume(u *models.User, now time.Time) error {
	if u.SubscriptionActive(now) {
		return nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		if !CanConsume(u, now, s.limit, s.loc) {
			return ErrQuotaExceeded
		}

		var res *gorm.DB
		if !SameQuotaDay(u.LastQuotaResetAt, now, s.loc) {
			// Day rolled over: reset first, then count this action.
			res = s.db.Model(&models.User{}).
				Where("id = ? AND last_quota_reset_at = ?", u.ID, u.LastQuotaResetAt).
				Updates(map[string]interface{}{
					"daily_quota_used":    1,
					"last_quota_reset_at": now,
				})
			if res.Error == nil && res.RowsAffected == 1 {
				u.DailyQuotaUsed = 1
				u.LastQuotaResetAt = now
				return nil
			}
		} else {
			res = s.db.Model(&models.User{}).
				Where("id = ? AND daily_quota_used = ? AND daily_quota_used < ?", u.ID, u.DailyQuotaUsed, s.limit).
				Update("daily_quota_used", gorm.Expr("daily_quota_used + 1"))
			if res.Error == nil && res.RowsAffected == 1 {
				u.DailyQuotaUsed++
				return nil
			}
		}
		if res.Error != nil {
			return fmt.Errorf("consume quota: %w", res.Error)
		}

		// Guard miss: another request moved the counter. Reload and
		// re-evaluate against the fresh row.
		if err := s.db.First(u, "id = ?", u.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("reload user: %w", err)
		}
	}

	// Quota may well remain; the loop lost every race. Distinguish
	// contention from an exhausted limit so callers can ask for a
	// retry instead of an upgrade.
	return ErrQuotaConflict
}
