package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aylinky/jyotir-backend/internal/astro"
	"github.com/aylinky/jyotir-backend/internal/cache"
	"github.com/aylinky/jyotir-backend/internal/config"
	"github.com/aylinky/jyotir-backend/internal/cryptox"
	"github.com/aylinky/jyotir-backend/internal/dto"
	"github.com/aylinky/jyotir-backend/internal/middleware"
	"github.com/aylinky/jyotir-backend/internal/models"
	"github.com/aylinky/jyotir-backend/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	horoscopeCache *cache.HoroscopeCache
	cfg            *config.Config
}

func NewProfileHandler(profileService *services.ProfileService, horoscopeCache *cache.HoroscopeCache, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, horoscopeCache: horoscopeCache, cfg: cfg}
}

// Upsert stores birth facts for the authenticated user, replacing any
// previous facts and clearing cached artifacts in the same write.
func (h *ProfileHandler) Upsert(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BirthFactsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	profile, err := h.profileService.CreateOrReplaceBirthFacts(userID, req.ToFacts())
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("birth profile upsert failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save birth profile",
		})
	}

	// New facts invalidate any horoscopes derived from the old ones.
	h.horoscopeCache.Invalidate(c.UserContext(), profile.ID)

	return c.Status(fiber.StatusCreated).JSON(dto.NewProfileResponse(profile, time.Now(), h.cfg.ArtifactMaxAge))
}

// Get returns the profile with artifacts refreshed when absent or past
// the staleness window. A failed refresh of stale artifacts still
// serves the cached copy.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.profileService.FreshArtifacts(c.UserContext(), userID)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	return c.JSON(dto.NewProfileResponse(profile, time.Now(), h.cfg.ArtifactMaxAge))
}

// Recompute forces a fresh engine computation regardless of artifact
// age. Concurrent calls for the same profile share one computation.
func (h *ProfileHandler) Recompute(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	return h.recomputeFor(c, userID)
}

// RecomputeByUserID is the admin variant taking the target user as a
// path parameter.
func (h *ProfileHandler) RecomputeByUserID(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	return h.recomputeFor(c, userID)
}

func (h *ProfileHandler) recomputeFor(c *fiber.Ctx, userID uuid.UUID) error {
	profile, err := h.profileService.GetByUserID(userID)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	profile, err = h.profileService.RefreshArtifacts(c.UserContext(), profile)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	h.horoscopeCache.Invalidate(c.UserContext(), profile.ID)

	return c.JSON(dto.NewProfileResponse(profile, time.Now(), h.cfg.ArtifactMaxAge))
}

// MangalDosha is a convenience lookup over the cached dosha analysis.
func (h *ProfileHandler) MangalDosha(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.profileService.FreshArtifacts(c.UserContext(), userID)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	dosha, found := profile.Dosha(models.MangalDoshaName)
	if !found {
		return c.JSON(fiber.Map{"present": false})
	}
	return c.JSON(dosha)
}

// mapProfileError translates service and crypto errors into HTTP
// responses shared by every profile-derived endpoint.
func mapProfileError(c *fiber.Ctx, userID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, services.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Birth profile not found",
		})
	case errors.Is(err, services.ErrMissingPayload):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Birth profile has no stored birth data",
		})
	case errors.Is(err, cryptox.ErrDecryption):
		// Detail goes to the log only; the body must not hint at
		// key or ciphertext state.
		slog.Error("birth profile decryption failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Unable to read profile data",
		})
	case errors.Is(err, astro.ErrEngine):
		slog.Error("astrology engine unavailable", "user_id", userID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Computation service unavailable, please try again later",
		})
	default:
		slog.Error("profile request failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}
