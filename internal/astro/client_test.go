package astro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFacts = BirthFacts{
	Date:      "1990-05-15",
	Time:      "14:30",
	Place:     "New Delhi, India",
	Latitude:  28.6139,
	Longitude: 77.209,
	Timezone:  "Asia/Kolkata",
}

func TestComputeKundli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/kundli/comprehensive", r.URL.Path)

		var req kundliRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "1990-05-15", req.Date)
		assert.Equal(t, "Lahiri", req.Ayanamsa)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"rasi_chart": {"division": "D1", "ascendant": "Taurus", "placements": [{"house": 1, "sign": "Taurus", "planets": ["Moon"]}]},
				"planetary_positions": [{"planet": "Moon", "longitude": 32.8, "sign": "Taurus", "sign_num": 2, "house": 1}],
				"moon_sign": "Taurus",
				"nakshatra": "Rohini",
				"doshas": [{"name": "mangal", "present": false}],
				"engine_version": "2.3.1"
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	bundle, err := client.ComputeKundli(context.Background(), testFacts, "vedic", "Lahiri")
	require.NoError(t, err)

	require.NotNil(t, bundle.RasiChart)
	assert.Equal(t, "Taurus", bundle.RasiChart.Ascendant)
	require.Len(t, bundle.PlanetaryPositions, 1)
	assert.Equal(t, "Moon", bundle.PlanetaryPositions[0].Planet)
	assert.Equal(t, "Rohini", bundle.Nakshatra)
	assert.Equal(t, "2.3.1", bundle.EngineVersion)
}

func TestComputeKundli_EngineFailure(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		_, err := client.ComputeKundli(context.Background(), testFacts, "vedic", "Lahiri")
		assert.ErrorIs(t, err, ErrEngine)
	})

	t.Run("failure envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success": false, "error": "ephemeris unavailable"}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		_, err := client.ComputeKundli(context.Background(), testFacts, "vedic", "Lahiri")
		assert.ErrorIs(t, err, ErrEngine)
		assert.Contains(t, err.Error(), "ephemeris unavailable")
	})

	t.Run("malformed envelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, 5*time.Second)
		_, err := client.ComputeKundli(context.Background(), testFacts, "vedic", "Lahiri")
		assert.ErrorIs(t, err, ErrEngine)
	})
}

func TestHoroscope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/horoscope/daily", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {"period": "daily", "target_date": "2025-06-15", "summary": "A favorable day.", "sections": {"career": "Steady progress."}}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	h, err := client.Horoscope(context.Background(), "daily", testFacts, "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "daily", h.Period)
	assert.Equal(t, "A favorable day.", h.Summary)
	assert.Equal(t, "Steady progress.", h.Sections["career"])
}

func TestHoroscope_ContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Horoscope(ctx, "daily", testFacts, "")
	assert.ErrorIs(t, err, ErrEngine)
}
