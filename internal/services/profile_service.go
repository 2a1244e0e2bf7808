package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/aylinky/jyotir-backend/internal/astro"
	"github.com/aylinky/jyotir-backend/internal/config"
	"github.com/aylinky/jyotir-backend/internal/cryptox"
	"github.com/aylinky/jyotir-backend/internal/models"
)

// KundliComputer is the slice of the engine client the profile service
// needs; tests substitute a stub.
type KundliComputer interface {
	ComputeKundli(ctx context.Context, facts astro.BirthFacts, method, ayanamsa string) (*astro.ArtifactBundle, error)
}

// ProfileService owns the birth profile lifecycle: sealing raw facts,
// keeping the quick-access fields consistent with the encrypted
// payload, and maintaining the cached artifact set.
type ProfileService struct {
	db     *gorm.DB
	cfg    *config.Config
	engine KundliComputer
	group  singleflight.Group
}

func NewProfileService(db *gorm.DB, cfg *config.Config, engine KundliComputer) *ProfileService {
	return &ProfileService{db: db, cfg: cfg, engine: engine}
}

// Columns written by createOrReplace and ApplyComputedArtifacts. The
// two operations must each land in a single UPDATE so a concurrent
// reader never sees a half-written record.
var artifactColumns = []string{
	"rasi_chart", "navamsa_chart", "planetary_positions", "house_cusps",
	"current_dasha", "dasha_timeline", "ascendant_sign", "moon_sign",
	"sun_sign", "nakshatra", "yogas", "doshas", "strengths",
	"artifacts_generated_at", "engine_version", "calculation_method",
	"ayanamsa_system",
}

var factColumns = []string{
	"encrypted_payload", "iv", "birth_date", "birth_time",
	"birth_location", "latitude", "longitude", "timezone",
}

// ValidateFacts rejects malformed birth facts before anything is
// sealed or written.
func ValidateFacts(facts astro.BirthFacts, now time.Time) error {
	if facts.Place == "" {
		return fmt.Errorf("%w: birth location is required", ErrValidation)
	}
	birthDate, err := time.Parse("2006-01-02", facts.Date)
	if err != nil {
		return fmt.Errorf("%w: birth date must be YYYY-MM-DD", ErrValidation)
	}
	if !birthDate.Before(now) {
		return fmt.Errorf("%w: birth date must be in the past", ErrValidation)
	}
	if _, err := time.Parse("15:04", facts.Time); err != nil {
		return fmt.Errorf("%w: birth time must be HH:MM", ErrValidation)
	}
	if facts.Latitude < -90 || facts.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be within [-90, 90]", ErrValidation)
	}
	if facts.Longitude < -180 || facts.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be within [-180, 180]", ErrValidation)
	}
	if facts.Timezone != "" {
		if _, err := time.LoadLocation(facts.Timezone); err != nil {
			return fmt.Errorf("%w: timezone must be a valid IANA zone", ErrValidation)
		}
	}
	return nil
}

func (s *ProfileService) GetByUserID(userID uuid.UUID) (*models.BirthProfile, error) {
	var p models.BirthProfile
	if err := s.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// CreateOrReplaceBirthFacts is the only path that changes plaintext
// birth facts. It seals the payload under a fresh IV, writes payload,
// IV and quick-access fields in one statement, and clears every cached
// artifact so the next access recomputes.
func (s *ProfileService) CreateOrReplaceBirthFacts(userID uuid.UUID, facts astro.BirthFacts) (*models.BirthProfile, error) {
	if err := ValidateFacts(facts, time.Now()); err != nil {
		return nil, err
	}

	ciphertext, iv, err := cryptox.Seal(facts, s.cfg.ProfileCipherKey)
	if err != nil {
		return nil, fmt.Errorf("seal birth facts: %w", err)
	}

	fresh := models.BirthProfile{
		EncryptedPayload: ciphertext,
		IV:               iv,
		BirthDate:        facts.Date,
		BirthTime:        facts.Time,
		BirthLocation:    facts.Place,
		Latitude:         facts.Latitude,
		Longitude:        facts.Longitude,
		Timezone:         facts.Timezone,
		// Artifact fields stay at their zero values: the Select below
		// forces them to NULL/empty in the same UPDATE.
	}

	var result *models.BirthProfile
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.BirthProfile
		err := tx.Where("user_id = ?", userID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh.UserID = userID
			if err := tx.Create(&fresh).Error; err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
			result = &fresh
			return nil
		}
		if err != nil {
			return err
		}

		cols := append(append([]string{}, factColumns...), artifactColumns...)
		if err := tx.Model(&existing).Select(cols).Updates(&fresh).Error; err != nil {
			return fmt.Errorf("replace birth facts: %w", err)
		}
		if err := tx.First(&existing, "id = ?", existing.ID).Error; err != nil {
			return err
		}
		result = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DecryptFacts recovers the plaintext birth facts from the sealed
// payload.
func (s *ProfileService) DecryptFacts(p *models.BirthProfile) (*astro.BirthFacts, error) {
	if p.EncryptedPayload == "" || p.IV == "" {
		return nil, ErrMissingPayload
	}
	var facts astro.BirthFacts
	if err := cryptox.Open(p.EncryptedPayload, p.IV, s.cfg.ProfileCipherKey, &facts); err != nil {
		return nil, err
	}
	return &facts, nil
}

// ApplyComputedArtifacts overwrites the full cached-artifact set and
// its metadata in one UPDATE. A failed engine call never reaches this
// point, so the previous cache survives intact.
func (s *ProfileService) ApplyComputedArtifacts(p *models.BirthProfile, bundle *astro.ArtifactBundle, generatedAt time.Time) error {
	update := models.BirthProfile{
		RasiChart:            bundle.RasiChart,
		NavamsaChart:         bundle.NavamsaChart,
		PlanetaryPositions:   bundle.PlanetaryPositions,
		HouseCusps:           bundle.HouseCusps,
		CurrentDasha:         bundle.CurrentDasha,
		DashaTimeline:        bundle.DashaTimeline,
		AscendantSign:        bundle.AscendantSign,
		MoonSign:             bundle.MoonSign,
		SunSign:              bundle.SunSign,
		Nakshatra:            bundle.Nakshatra,
		Yogas:                bundle.Yogas,
		Doshas:               bundle.Doshas,
		Strengths:            bundle.Strengths,
		ArtifactsGeneratedAt: &generatedAt,
		EngineVersion:        bundle.EngineVersion,
		CalculationMethod:    s.cfg.CalculationMethod,
		AyanamsaSystem:       s.cfg.AyanamsaSystem,
	}
	return s.db.Model(&models.BirthProfile{}).
		Where("id = ?", p.ID).
		Select(artifactColumns).
		Updates(&update).Error
}

// RefreshArtifacts recomputes the artifact bundle from the sealed
// facts. Concurrent refreshes for the same profile are collapsed into
// one engine call.
func (s *ProfileService) RefreshArtifacts(ctx context.Context, p *models.BirthProfile) (*models.BirthProfile, error) {
	v, err, _ := s.group.Do(p.ID.String(), func() (interface{}, error) {
		facts, err := s.DecryptFacts(p)
		if err != nil {
			return nil, err
		}

		bundle, err := s.engine.ComputeKundli(ctx, *facts, s.cfg.CalculationMethod, s.cfg.AyanamsaSystem)
		if err != nil {
			return nil, err
		}

		if p.EngineVersion != "" && bundle.EngineVersion != p.EngineVersion {
			// Version changes are recorded but do not themselves make a
			// cache stale; only age does.
			slog.Info("engine version changed",
				"profile_id", p.ID, "from", p.EngineVersion, "to", bundle.EngineVersion)
		}

		if err := s.ApplyComputedArtifacts(p, bundle, time.Now()); err != nil {
			return nil, fmt.Errorf("apply artifacts: %w", err)
		}

		var updated models.BirthProfile
		if err := s.db.First(&updated, "id = ?", p.ID).Error; err != nil {
			return nil, err
		}
		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.BirthProfile), nil
}

// FreshArtifacts returns the profile with a usable artifact set,
// computing on first access and recomputing past the staleness window.
// Staleness is advisory: when a refresh fails, the stale cache is
// served and the failure logged.
func (s *ProfileService) FreshArtifacts(ctx context.Context, userID uuid.UUID) (*models.BirthProfile, error) {
	p, err := s.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	if !p.HasArtifacts() {
		return s.RefreshArtifacts(ctx, p)
	}

	if p.IsStale(time.Now(), s.cfg.ArtifactMaxAge) {
		refreshed, err := s.RefreshArtifacts(ctx, p)
		if err != nil {
			slog.Warn("artifact refresh failed, serving stale cache",
				"profile_id", p.ID, "generated_at", p.ArtifactsGeneratedAt, "error", err)
			return p, nil
		}
		return refreshed, nil
	}

	return p, nil
}
