package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Replacing birth facts on an existing profile must leave the record
// with no cached artifacts: everything derived from the old facts is
// cleared in the same UPDATE that writes the new payload.
func TestCreateOrReplaceBirthFacts_ReplaceClearsArtifacts(t *testing.T) {
	db, mock := newMockDB(t)
	cfg := testProfileConfig()
	svc := NewProfileService(db, cfg, nil)

	userID := uuid.New()
	profileID := uuid.New()
	generated := time.Now().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "birth_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "encrypted_payload", "iv", "moon_sign", "artifacts_generated_at"}).
			AddRow(profileID.String(), userID.String(), "00ff", "00ff00ff00ff00ff00ff00ff00ff00ff", "Taurus", generated))
	mock.ExpectExec(`UPDATE "birth_profiles" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "birth_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "birth_location", "artifacts_generated_at"}).
			AddRow(profileID.String(), userID.String(), validFacts().Place, nil))
	mock.ExpectCommit()

	p, err := svc.CreateOrReplaceBirthFacts(userID, validFacts())
	require.NoError(t, err)
	assert.False(t, p.HasArtifacts(), "replaced facts must drop the cached artifact set")
	assert.True(t, p.IsStale(time.Now(), cfg.ArtifactMaxAge))
	assert.Equal(t, validFacts().Place, p.BirthLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrReplaceBirthFacts_CreatesWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	cfg := testProfileConfig()
	svc := NewProfileService(db, cfg, nil)

	userID := uuid.New()
	profileID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "birth_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "birth_profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(profileID.String()))
	mock.ExpectCommit()

	p, err := svc.CreateOrReplaceBirthFacts(userID, validFacts())
	require.NoError(t, err)
	assert.Equal(t, userID, p.UserID)
	assert.False(t, p.HasArtifacts(), "a brand new profile carries no artifacts")
	assert.NotEmpty(t, p.EncryptedPayload)
	assert.NotEmpty(t, p.IV)
	assert.NoError(t, mock.ExpectationsWereMet())
}
