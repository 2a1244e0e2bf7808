package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aylinky/jyotir-backend/internal/config"
	"github.com/aylinky/jyotir-backend/internal/models"
)

func newQuotaServiceWithMock(t *testing.T) (*QuotaService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockDB(t)
	cfg := &config.Config{FreeTierDailyLimit: testLimit, QuotaTimezone: time.UTC}
	return NewQuotaService(db, cfg), mock
}

func freeUser(used int, resetAt time.Time) *models.User {
	return &models.User{
		ID:               uuid.New(),
		SubscriptionTier: models.TierFree,
		DailyQuotaUsed:   used,
		LastQuotaResetAt: resetAt,
	}
}

func userReloadRows(u *models.User, used int, resetAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "subscription_tier", "daily_quota_used", "last_quota_reset_at"}).
		AddRow(u.ID.String(), models.TierFree, used, resetAt)
}

// A user who exhausted yesterday's quota consumes today: the reset
// fires and the counter ends at exactly 1.
func TestConsume_DayBoundaryResetEndsAtOne(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, mock := newQuotaServiceWithMock(t)
	u := freeUser(testLimit, now.Add(-24*time.Hour))

	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Consume(u, now))
	assert.Equal(t, 1, u.DailyQuotaUsed)
	assert.True(t, SameQuotaDay(u.LastQuotaResetAt, now, time.UTC))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_SameDayIncrement(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, mock := newQuotaServiceWithMock(t)
	u := freeUser(2, now.Add(-time.Hour))

	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Consume(u, now))
	assert.Equal(t, 3, u.DailyQuotaUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// At the limit with today's reset the call is rejected before any
// write is attempted.
func TestConsume_AtLimitSameDay(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, mock := newQuotaServiceWithMock(t)
	u := freeUser(testLimit, now.Add(-time.Hour))

	assert.ErrorIs(t, svc.Consume(u, now), ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_PremiumSkipsWrite(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	end := now.Add(24 * time.Hour)
	svc, mock := newQuotaServiceWithMock(t)
	u := &models.User{
		ID:                  uuid.New(),
		SubscriptionTier:    models.TierPremium,
		SubscriptionEndDate: &end,
		DailyQuotaUsed:      99,
		LastQuotaResetAt:    now,
	}

	require.NoError(t, svc.Consume(u, now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A guard miss means another request moved the counter between our
// read and our write; the row is reloaded and the guarded UPDATE
// retried against the fresh value.
func TestConsume_GuardMissReloadsAndRetries(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, mock := newQuotaServiceWithMock(t)
	u := freeUser(3, now.Add(-time.Hour))

	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userReloadRows(u, 4, now.Add(-time.Hour)))
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Consume(u, now))
	assert.Equal(t, 5, u.DailyQuotaUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Losing every retry under contention is not the same as running out
// of quota; callers get a retryable conflict, not an upgrade prompt.
func TestConsume_ContentionIsNotExceeded(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, mock := newQuotaServiceWithMock(t)
	u := freeUser(3, now.Add(-time.Hour))

	for i := 0; i < 3; i++ {
		mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(userReloadRows(u, 3, now.Add(-time.Hour)))
	}

	err := svc.Consume(u, now)
	assert.ErrorIs(t, err, ErrQuotaConflict)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
