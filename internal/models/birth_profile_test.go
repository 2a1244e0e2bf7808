package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aylinky/jyotir-backend/internal/astro"
)

const testMaxAge = 30 * 24 * time.Hour

func sampleChart() *astro.Chart {
	return &astro.Chart{
		Division:  "D1",
		Ascendant: "Taurus",
		Placements: []astro.ChartPlacement{
			{House: 1, Sign: "Taurus", Planets: []string{"Moon"}},
		},
	}
}

func samplePositions() []astro.PlanetPosition {
	return []astro.PlanetPosition{
		{Planet: "Moon", Longitude: 32.8, Sign: "Taurus", SignNum: 2, House: 1},
	}
}

func TestHasArtifacts(t *testing.T) {
	tests := []struct {
		name      string
		chart     *astro.Chart
		positions []astro.PlanetPosition
		want      bool
	}{
		{"nothing cached", nil, nil, false},
		{"chart only", sampleChart(), nil, false},
		{"positions only", nil, samplePositions(), false},
		{"complete set", sampleChart(), samplePositions(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BirthProfile{RasiChart: tt.chart, PlanetaryPositions: tt.positions}
			assert.Equal(t, tt.want, p.HasArtifacts())
		})
	}
}

func TestIsStale_Boundary(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("never generated", func(t *testing.T) {
		p := BirthProfile{}
		assert.True(t, p.IsStale(now, testMaxAge))
	})

	t.Run("just over the limit", func(t *testing.T) {
		gen := now.Add(-testMaxAge - time.Second)
		p := BirthProfile{ArtifactsGeneratedAt: &gen}
		assert.True(t, p.IsStale(now, testMaxAge))
	})

	t.Run("29 days old", func(t *testing.T) {
		gen := now.Add(-29 * 24 * time.Hour)
		p := BirthProfile{ArtifactsGeneratedAt: &gen}
		assert.False(t, p.IsStale(now, testMaxAge))
	})

	t.Run("exactly at the limit", func(t *testing.T) {
		gen := now.Add(-testMaxAge)
		p := BirthProfile{ArtifactsGeneratedAt: &gen}
		assert.False(t, p.IsStale(now, testMaxAge))
	})
}

// Freshness lifecycle: no artifacts -> fresh after a computed set is
// applied -> stale after the clock advances -> cached data still
// readable until overwritten.
func TestArtifactFreshnessLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	p := BirthProfile{BirthDate: "1990-05-15", BirthLocation: "New Delhi, India"}

	assert.False(t, p.HasArtifacts())
	assert.True(t, p.IsStale(now, testMaxAge))

	p.RasiChart = sampleChart()
	p.PlanetaryPositions = samplePositions()
	gen := now
	p.ArtifactsGeneratedAt = &gen
	p.EngineVersion = "2.3.1"

	assert.True(t, p.HasArtifacts())
	assert.False(t, p.IsStale(now, testMaxAge))

	later := now.Add(31 * 24 * time.Hour)
	assert.True(t, p.IsStale(later, testMaxAge))
	assert.True(t, p.HasArtifacts(), "staleness must not erase cached data")
	assert.Equal(t, "Taurus", p.RasiChart.Ascendant)
}

func TestDoshaQueries(t *testing.T) {
	// Names as the engine reports them.
	p := BirthProfile{Doshas: []astro.Dosha{
		{Name: MangalDoshaName, Present: true, Severity: "high"},
		{Name: "Kaal Sarp Dosha", Present: false},
	}}

	assert.True(t, p.HasMangalDosha())

	d, ok := p.Dosha("Kaal Sarp Dosha")
	assert.True(t, ok)
	assert.False(t, d.Present)

	_, ok = p.Dosha("Sade Sati")
	assert.False(t, ok)

	present, found := p.Dosha(MangalDoshaName)
	assert.True(t, found)
	assert.True(t, present.Present)

	empty := BirthProfile{}
	assert.False(t, empty.HasMangalDosha())
}
