package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/aylinky/jyotir-backend/internal/models"
)

type AskRequest struct {
	Question string `json:"question"`
}

type ChatMessageResponse struct {
	ID        uuid.UUID      `json:"id"`
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Context   datatypes.JSON `json:"context"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewChatMessageResponse(m *models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		Question:  m.Question,
		Answer:    m.Answer,
		Context:   m.Context,
		CreatedAt: m.CreatedAt,
	}
}

type ChatHistoryResponse struct {
	Data       []ChatMessageResponse `json:"data"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalCount int64                 `json:"total_count"`
}

// AskEligibilityResponse tells the client whether the next question
// would be accepted, before it sends one.
type AskEligibilityResponse struct {
	CanAsk       bool `json:"can_ask"`
	Remaining    int  `json:"remaining"`
	IsSubscribed bool `json:"is_subscribed"`
}
