package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aylinky/jyotir-backend/internal/astro"
	"github.com/aylinky/jyotir-backend/internal/models"
)

func marshalToMap(t *testing.T, v any) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestProfileResponse_ExcludesConfidentialFields(t *testing.T) {
	gen := time.Now()
	p := &models.BirthProfile{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		EncryptedPayload: "deadbeef",
		IV:               "00112233445566778899aabbccddeeff",
		BirthDate:        "1990-05-15",
		BirthLocation:    "New Delhi, India",
		RasiChart:        &astro.Chart{Division: "D1", Ascendant: "Taurus"},
		PlanetaryPositions: []astro.PlanetPosition{
			{Planet: "Moon", Sign: "Taurus"},
		},
		ArtifactsGeneratedAt: &gen,
	}

	resp := NewProfileResponse(p, time.Now(), 30*24*time.Hour)
	m := marshalToMap(t, resp)

	for _, forbidden := range []string{"encrypted_payload", "iv", "EncryptedPayload", "IV"} {
		_, present := m[forbidden]
		assert.False(t, present, "projection leaked %q", forbidden)
	}

	assert.Equal(t, "New Delhi, India", m["birth_location"])
	assert.Equal(t, true, m["has_artifacts"])
}

// The model's own json tags are the second line of defense; even a
// handler that serializes the record directly must not leak the
// payload.
func TestBirthProfileModel_JSONTagsHideSecrets(t *testing.T) {
	p := models.BirthProfile{EncryptedPayload: "deadbeef", IV: "cafe"}
	m := marshalToMap(t, p)

	b, _ := json.Marshal(p)
	assert.NotContains(t, string(b), "deadbeef")
	assert.NotContains(t, string(b), "cafe")
	_, present := m["encrypted_payload"]
	assert.False(t, present)
}

func TestUserResponse_ExcludesCredentials(t *testing.T) {
	appleID := "001234.abcdef"
	u := &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		Password:     "$2a$10$secret-hash",
		AppleUserID:  &appleID,
		AuthProvider: "apple",
	}

	m := marshalToMap(t, NewUserResponse(u))

	for _, forbidden := range []string{"password", "Password", "apple_user_id", "auth_provider"} {
		_, present := m[forbidden]
		assert.False(t, present, "projection leaked %q", forbidden)
	}
	assert.Equal(t, true, m["is_apple_user"])

	b, _ := json.Marshal(u)
	assert.NotContains(t, string(b), "secret-hash")
}
