package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/aylinky/jyotir-backend/internal/astro"
	"github.com/aylinky/jyotir-backend/internal/models"
)

type BirthFactsRequest struct {
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	Place     string  `json:"place"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

func (r BirthFactsRequest) ToFacts() astro.BirthFacts {
	return astro.BirthFacts{
		Date:      r.Date,
		Time:      r.Time,
		Place:     r.Place,
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  r.Timezone,
	}
}

// ProfileResponse is the only sanctioned external shape of a birth
// profile. EncryptedPayload and IV never appear here; review this list
// whenever BirthProfile grows a field.
type ProfileResponse struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	BirthDate     string    `json:"birth_date"`
	BirthTime     string    `json:"birth_time"`
	BirthLocation string    `json:"birth_location"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Timezone      string    `json:"timezone"`

	RasiChart          *astro.Chart           `json:"rasi_chart,omitempty"`
	NavamsaChart       *astro.Chart           `json:"navamsa_chart,omitempty"`
	PlanetaryPositions []astro.PlanetPosition `json:"planetary_positions,omitempty"`
	HouseCusps         []astro.HouseCusp      `json:"house_cusps,omitempty"`
	CurrentDasha       *astro.CurrentDasha    `json:"current_dasha,omitempty"`
	DashaTimeline      []astro.DashaPeriod    `json:"dasha_timeline,omitempty"`
	AscendantSign      string                 `json:"ascendant_sign,omitempty"`
	MoonSign           string                 `json:"moon_sign,omitempty"`
	SunSign            string                 `json:"sun_sign,omitempty"`
	Nakshatra          string                 `json:"nakshatra,omitempty"`
	Yogas              []astro.Yoga           `json:"yogas,omitempty"`
	Doshas             []astro.Dosha          `json:"doshas,omitempty"`
	Strengths          []astro.StrengthScore  `json:"strengths,omitempty"`

	HasArtifacts         bool       `json:"has_artifacts"`
	ArtifactsStale       bool       `json:"artifacts_stale"`
	ArtifactsGeneratedAt *time.Time `json:"artifacts_generated_at,omitempty"`
	EngineVersion        string     `json:"engine_version,omitempty"`
	CalculationMethod    string     `json:"calculation_method,omitempty"`
	AyanamsaSystem       string     `json:"ayanamsa_system,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProfileResponse(p *models.BirthProfile, now time.Time, maxAge time.Duration) ProfileResponse {
	return ProfileResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		BirthDate:     p.BirthDate,
		BirthTime:     p.BirthTime,
		BirthLocation: p.BirthLocation,
		Latitude:      p.Latitude,
		Longitude:     p.Longitude,
		Timezone:      p.Timezone,

		RasiChart:          p.RasiChart,
		NavamsaChart:       p.NavamsaChart,
		PlanetaryPositions: p.PlanetaryPositions,
		HouseCusps:         p.HouseCusps,
		CurrentDasha:       p.CurrentDasha,
		DashaTimeline:      p.DashaTimeline,
		AscendantSign:      p.AscendantSign,
		MoonSign:           p.MoonSign,
		SunSign:            p.SunSign,
		Nakshatra:          p.Nakshatra,
		Yogas:              p.Yogas,
		Doshas:             p.Doshas,
		Strengths:          p.Strengths,

		HasArtifacts:         p.HasArtifacts(),
		ArtifactsStale:       p.IsStale(now, maxAge),
		ArtifactsGeneratedAt: p.ArtifactsGeneratedAt,
		EngineVersion:        p.EngineVersion,
		CalculationMethod:    p.CalculationMethod,
		AyanamsaSystem:       p.AyanamsaSystem,

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
