// Package astro is the client for the external astrology computation
// engine. The engine owns every calculation; this package only speaks
// its HTTP API and defines the typed artifact bundle cached on a
// profile.
package astro

import "time"

// BirthFacts is the plaintext form of the encrypted payload stored on a
// profile. It is what the engine consumes.
type BirthFacts struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	Time      string  `json:"time"` // HH:MM
	Place     string  `json:"place"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"` // IANA zone name
}

type PlanetPosition struct {
	Planet     string  `json:"planet"`
	Longitude  float64 `json:"longitude"`
	Sign       string  `json:"sign"`
	SignNum    int     `json:"sign_num"`
	House      int     `json:"house"`
	Degree     float64 `json:"degree"`
	Retrograde bool    `json:"retrograde"`
	Nakshatra  string  `json:"nakshatra,omitempty"`
	Pada       int     `json:"pada,omitempty"`
}

type ChartPlacement struct {
	House   int      `json:"house"`
	Sign    string   `json:"sign"`
	Planets []string `json:"planets"`
}

// Chart is a divisional chart (rasi/D1, navamsa/D9, ...) as placed by
// the engine.
type Chart struct {
	Division   string           `json:"division"`
	Ascendant  string           `json:"ascendant"`
	Placements []ChartPlacement `json:"placements"`
}

type HouseCusp struct {
	House     int     `json:"house"`
	Longitude float64 `json:"longitude"`
	Sign      string  `json:"sign"`
}

type DashaPeriod struct {
	Planet      string        `json:"planet"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	AntarDashas []DashaPeriod `json:"antar_dashas,omitempty"`
}

type CurrentDasha struct {
	MahaDasha       string    `json:"maha_dasha"`
	AntarDasha      string    `json:"antar_dasha"`
	PratyantarDasha string    `json:"pratyantar_dasha,omitempty"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
}

type Yoga struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Strength    string `json:"strength,omitempty"`
}

type Dosha struct {
	Name     string `json:"name"`
	Present  bool   `json:"present"`
	Severity string `json:"severity,omitempty"`
	Remarks  string `json:"remarks,omitempty"`
}

type StrengthScore struct {
	Planet   string  `json:"planet"`
	Shadbala float64 `json:"shadbala"`
	Required float64 `json:"required"`
	Ratio    float64 `json:"ratio"`
}

// ArtifactBundle is everything one comprehensive engine call yields.
// All of it is cached on the profile in one write.
type ArtifactBundle struct {
	RasiChart          *Chart           `json:"rasi_chart"`
	NavamsaChart       *Chart           `json:"navamsa_chart"`
	PlanetaryPositions []PlanetPosition `json:"planetary_positions"`
	HouseCusps         []HouseCusp      `json:"house_cusps"`
	CurrentDasha       *CurrentDasha    `json:"current_dasha"`
	DashaTimeline      []DashaPeriod    `json:"dasha_timeline"`
	AscendantSign      string           `json:"ascendant_sign"`
	MoonSign           string           `json:"moon_sign"`
	SunSign            string           `json:"sun_sign"`
	Nakshatra          string           `json:"nakshatra"`
	Yogas              []Yoga           `json:"yogas"`
	Doshas             []Dosha          `json:"doshas"`
	Strengths          []StrengthScore  `json:"strengths"`
	EngineVersion      string           `json:"engine_version"`
}

// Horoscope is a generated prediction for a period (daily, monthly,
// yearly). Free-form sections come straight from the engine.
type Horoscope struct {
	Period      string            `json:"period"`
	TargetDate  string            `json:"target_date"`
	Summary     string            `json:"summary"`
	Sections    map[string]string `json:"sections"`
	LuckyNumber int               `json:"lucky_number,omitempty"`
	LuckyColor  string            `json:"lucky_color,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Remedies are gemstone/mantra suggestions derived by the engine from
// doshas and planetary strengths.
type Remedies struct {
	Gemstones []GemstoneSuggestion `json:"gemstones"`
	Mantras   []MantraSuggestion   `json:"mantras"`
}

type GemstoneSuggestion struct {
	Planet   string `json:"planet"`
	Gemstone string `json:"gemstone"`
	Metal    string `json:"metal,omitempty"`
	Finger   string `json:"finger,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type MantraSuggestion struct {
	Planet string `json:"planet"`
	Mantra string `json:"mantra"`
	Count  int    `json:"count,omitempty"`
	Reason string `json:"reason,omitempty"`
}
