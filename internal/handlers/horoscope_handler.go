package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aylinky/jyotir-backend/internal/astro"
	"github.com/aylinky/jyotir-backend/internal/cache"
	"github.com/aylinky/jyotir-backend/internal/config"
	"github.com/aylinky/jyotir-backend/internal/dto"
	"github.com/aylinky/jyotir-backend/internal/middleware"
	"github.com/aylinky/jyotir-backend/internal/services"
)

var horoscopePeriods = map[string]bool{
	"daily":   true,
	"monthly": true,
	"yearly":  true,
}

type HoroscopeHandler struct {
	profileService *services.ProfileService
	engine         *astro.Client
	horoscopeCache *cache.HoroscopeCache
	cfg            *config.Config
}

func NewHoroscopeHandler(profileService *services.ProfileService, engine *astro.Client, horoscopeCache *cache.HoroscopeCache, cfg *config.Config) *HoroscopeHandler {
	return &HoroscopeHandler{
		profileService: profileService,
		engine:         engine,
		horoscopeCache: horoscopeCache,
		cfg:            cfg,
	}
}

// Get serves /horoscope/:period for the authenticated user's profile.
// An optional ?date=YYYY-MM-DD overrides the target date; it defaults
// to today. Responses are cached in Redis per profile, period and
// date; the cache is advisory and a miss or Redis outage only costs
// an engine round trip.
func (h *HoroscopeHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	period := c.Params("period")
	if !horoscopePeriods[period] {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Period must be one of: daily, monthly, yearly",
		})
	}

	target := c.Query("date")
	if target == "" {
		target = time.Now().In(h.cfg.QuotaTimezone).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", target); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Date must be in YYYY-MM-DD format",
		})
	}

	profile, err := h.profileService.GetByUserID(userID)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	if cached, ok := h.horoscopeCache.Get(c.UserContext(), profile.ID, period, target); ok {
		return c.JSON(cached)
	}

	facts, err := h.profileService.DecryptFacts(profile)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	horoscope, err := h.engine.Horoscope(c.UserContext(), period, *facts, target)
	if err != nil {
		slog.Error("horoscope computation failed", "user_id", userID, "period", period, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Computation service unavailable, please try again later",
		})
	}

	h.horoscopeCache.Set(c.UserContext(), profile.ID, period, target, horoscope, h.cfg.HoroscopeCacheTTL)

	return c.JSON(horoscope)
}

// Remedies proxies gemstone and mantra suggestions from the engine.
func (h *HoroscopeHandler) Remedies(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.profileService.GetByUserID(userID)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	facts, err := h.profileService.DecryptFacts(profile)
	if err != nil {
		return mapProfileError(c, userID, err)
	}

	remedies, err := h.engine.Remedies(c.UserContext(), *facts)
	if err != nil {
		slog.Error("remedies computation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Computation service unavailable, please try again later",
		})
	}

	return c.JSON(remedies)
}
