package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aylinky/jyotir-backend/internal/dto"
	"github.com/aylinky/jyotir-backend/internal/middleware"
	"github.com/aylinky/jyotir-backend/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
	authService *services.AuthService
	quota       *services.QuotaService
}

func NewChatHandler(chatService *services.ChatService, authService *services.AuthService, quota *services.QuotaService) *ChatHandler {
	return &ChatHandler{chatService: chatService, authService: authService, quota: quota}
}

// Ask is the metered endpoint. Active subscribers skip the counter;
// free users get the configured number of questions per calendar day.
func (h *ChatHandler) Ask(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	msg, err := h.chatService.Ask(c.UserContext(), user, req.Question)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Daily question limit reached. Upgrade to premium for unlimited questions.",
			})
		}
		if errors.Is(err, services.ErrQuotaConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Please try again in a moment.",
			})
		}
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("ask failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to answer question",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewChatMessageResponse(msg))
}

// Eligibility reports whether the user may ask right now and how many
// questions remain today. Remaining is -1 for active subscribers.
func (h *ChatHandler) Eligibility(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	now := time.Now()
	return c.JSON(dto.AskEligibilityResponse{
		CanAsk:       h.quota.CanConsume(user, now),
		Remaining:    h.quota.Remaining(user, now),
		IsSubscribed: user.SubscriptionActive(now),
	})
}

func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	messages, total, err := h.chatService.History(userID, page, pageSize)
	if err != nil {
		slog.Error("chat history failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load history",
		})
	}

	data := make([]dto.ChatMessageResponse, 0, len(messages))
	for i := range messages {
		data = append(data, dto.NewChatMessageResponse(&messages[i]))
	}

	return c.JSON(dto.ChatHistoryResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	})
}
