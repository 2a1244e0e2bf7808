package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aylinky/jyotir-backend/internal/astro"
	"github.com/aylinky/jyotir-backend/internal/models"
)

func TestComposeAnswer_NoProfile(t *testing.T) {
	answer, ctxJSON := composeAnswer("Should I change jobs?", false, nil)

	assert.Contains(t, answer, "birth details")
	assert.Equal(t, "{}", string(ctxJSON))
}

func TestComposeAnswer_NoArtifacts(t *testing.T) {
	answer, ctxJSON := composeAnswer("Should I change jobs?", true, &models.BirthProfile{})

	assert.Contains(t, answer, "birth details")
	assert.Equal(t, "{}", string(ctxJSON))
}

func TestComposeAnswer_GroundedInArtifacts(t *testing.T) {
	p := &models.BirthProfile{
		RasiChart:          &astro.Chart{Division: "D1", Ascendant: "Taurus"},
		PlanetaryPositions: []astro.PlanetPosition{{Planet: "Moon", Sign: "Cancer"}},
		MoonSign:           "Cancer",
		AscendantSign:      "Taurus",
		Nakshatra:          "Pushya",
		CurrentDasha:       &astro.CurrentDasha{MahaDasha: "Jupiter", AntarDasha: "Saturn"},
	}

	answer, ctxJSON := composeAnswer("Should I change jobs?", true, p)

	assert.Contains(t, answer, "Cancer")
	assert.Contains(t, answer, "Taurus")
	assert.Contains(t, answer, "Jupiter")

	var grounding map[string]interface{}
	require.NoError(t, json.Unmarshal(ctxJSON, &grounding))
	assert.Equal(t, "Cancer", grounding["moon_sign"])
	assert.Equal(t, "Jupiter", grounding["maha_dasha"])
	assert.Equal(t, "Saturn", grounding["antar_dasha"])
}
