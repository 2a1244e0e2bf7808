package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/aylinky/jyotir-backend/internal/astro"
)

// BirthProfile holds one user's encrypted birth facts, the plaintext
// quick-access fields derived from them, and the cached artifact set
// last returned by the computation engine.
//
// EncryptedPayload and IV are written together by the same operation
// that writes the quick-access fields; they never cross the trust
// boundary (json:"-" plus the dto layer's explicit field lists).
type BirthProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	// Raw input, confidential.
	EncryptedPayload string `gorm:"type:text" json:"-"`
	IV               string `gorm:"size:32" json:"-"`

	// Quick-access fields, always consistent with the plaintext form of
	// EncryptedPayload.
	BirthDate     string  `gorm:"size:10" json:"birth_date"`
	BirthTime     string  `gorm:"size:8" json:"birth_time"`
	BirthLocation string  `gorm:"size:255" json:"birth_location"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Timezone      string  `gorm:"size:64" json:"timezone"`

	// Cached artifacts, nil until first computed. Overwritten only as a
	// complete set by ApplyComputedArtifacts.
	RasiChart          *astro.Chart            `gorm:"type:jsonb;serializer:json" json:"rasi_chart,omitempty"`
	NavamsaChart       *astro.Chart            `gorm:"type:jsonb;serializer:json" json:"navamsa_chart,omitempty"`
	PlanetaryPositions []astro.PlanetPosition  `gorm:"type:jsonb;serializer:json" json:"planetary_positions,omitempty"`
	HouseCusps         []astro.HouseCusp       `gorm:"type:jsonb;serializer:json" json:"house_cusps,omitempty"`
	CurrentDasha       *astro.CurrentDasha     `gorm:"type:jsonb;serializer:json" json:"current_dasha,omitempty"`
	DashaTimeline      []astro.DashaPeriod     `gorm:"type:jsonb;serializer:json" json:"dasha_timeline,omitempty"`
	AscendantSign      string                  `gorm:"size:20" json:"ascendant_sign,omitempty"`
	MoonSign           string                  `gorm:"size:20" json:"moon_sign,omitempty"`
	SunSign            string                  `gorm:"size:20" json:"sun_sign,omitempty"`
	Nakshatra          string                  `gorm:"size:40" json:"nakshatra,omitempty"`
	Yogas              []astro.Yoga            `gorm:"type:jsonb;serializer:json" json:"yogas,omitempty"`
	Doshas             []astro.Dosha           `gorm:"type:jsonb;serializer:json" json:"doshas,omitempty"`
	Strengths          []astro.StrengthScore   `gorm:"type:jsonb;serializer:json" json:"strengths,omitempty"`

	// Cache metadata.
	ArtifactsGeneratedAt *time.Time `json:"artifacts_generated_at,omitempty"`
	EngineVersion        string     `gorm:"size:40" json:"engine_version,omitempty"`
	CalculationMethod    string     `gorm:"size:40" json:"calculation_method,omitempty"`
	AyanamsaSystem       string     `gorm:"size:40" json:"ayanamsa_system,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (BirthProfile) TableName() string {
	return "birth_profiles"
}

// HasArtifacts reports whether a complete artifact set is cached. A
// partial set (rasi chart without positions, or vice versa) counts as
// absent.
func (p *BirthProfile) HasArtifacts() bool {
	return p.RasiChart != nil && len(p.PlanetaryPositions) > 0
}

// IsStale reports whether the cached artifacts are old enough to
// warrant recomputation. Staleness is advisory: stale artifacts remain
// readable until explicitly overwritten. An engine version bump alone
// does not make a cache stale.
func (p *BirthProfile) IsStale(now time.Time, maxAge time.Duration) bool {
	if p.ArtifactsGeneratedAt == nil {
		return true
	}
	return now.Sub(*p.ArtifactsGeneratedAt) > maxAge
}

// MangalDoshaName is the dosha name as the engine reports it.
const MangalDoshaName = "Mangal Dosha"

// Dosha returns the cached dosha entry by name, reading only what is
// already cached.
func (p *BirthProfile) Dosha(name string) (astro.Dosha, bool) {
	for _, d := range p.Doshas {
		if d.Name == name {
			return d, true
		}
	}
	return astro.Dosha{}, false
}

// HasMangalDosha reads the cached dosha set; it never triggers a
// computation.
func (p *BirthProfile) HasMangalDosha() bool {
	d, ok := p.Dosha(MangalDoshaName)
	return ok && d.Present
}
