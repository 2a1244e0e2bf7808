package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/aylinky/jyotir-backend/internal/config"
	"github.com/aylinky/jyotir-backend/internal/handlers"
	"github.com/aylinky/jyotir-backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	horoscopeHandler *handlers.HoroscopeHandler,
	chatHandler *handlers.ChatHandler,
	webhookHandler *handlers.WebhookHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/apple", authHandler.AppleSignIn)

	// Protected auth routes applied per route so the JWT middleware
	// never touches the public ones.
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Birth profile (protected)
	profile := api.Group("/profile", middleware.JWTProtected(cfg))
	profile.Put("/", profileHandler.Upsert)
	profile.Get("/", profileHandler.Get)
	profile.Post("/recompute", profileHandler.Recompute)
	profile.Get("/mangal-dosha", profileHandler.MangalDosha)

	// Horoscopes and remedies (protected)
	api.Get("/horoscope/:period", middleware.JWTProtected(cfg), horoscopeHandler.Get)
	api.Get("/remedies", middleware.JWTProtected(cfg), horoscopeHandler.Remedies)

	// Metered questions (protected)
	api.Post("/ask", middleware.JWTProtected(cfg), chatHandler.Ask)
	api.Get("/ask/eligibility", middleware.JWTProtected(cfg), chatHandler.Eligibility)
	api.Get("/ask/history", middleware.JWTProtected(cfg), chatHandler.History)

	// Admin (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Post("/profiles/:user_id/recompute", profileHandler.RecomputeByUserID)

	// Webhooks use header token auth, no JWT
	webhooks := api.Group("/webhooks")
	webhooks.Post("/revenuecat", webhookHandler.HandleRevenueCat)
}
