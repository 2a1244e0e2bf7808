package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aylinky/jyotir-backend/internal/models"
)

// ChatService handles the metered question flow: subscription window
// first, then the daily counter, then answer generation grounded in
// whatever artifacts are already cached. Asking never triggers an
// artifact computation.
type ChatService struct {
	db    *gorm.DB
	quota *QuotaService
}

func NewChatService(db *gorm.DB, quota *QuotaService) *ChatService {
	return &ChatService{db: db, quota: quota}
}

// Ask consumes one quota slot and answers the question. The quota
// write happens before the answer is generated so a crash mid-answer
// cannot hand out free questions.
func (s *ChatService) Ask(ctx context.Context, user *models.User, question string) (*models.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrValidation)
	}

	if err := s.quota.Consume(user, time.Now()); err != nil {
		return nil, err
	}

	var profile models.BirthProfile
	hasProfile := true
	if err := s.db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		hasProfile = false
	}

	answer, chartContext := composeAnswer(question, hasProfile, &profile)

	msg := &models.ChatMessage{
		UserID:   user.ID,
		Question: question,
		Answer:   answer,
		Context:  chartContext,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("store chat message: %w", err)
	}
	return msg, nil
}

// composeAnswer grounds the reply in the cached chart snapshot. It
// reads artifacts only; a profile with nothing cached gets a generic
// reply.
func composeAnswer(question string, hasProfile bool, p *models.BirthProfile) (string, datatypes.JSON) {
	emptyCtx := datatypes.JSON([]byte(`{}`))

	if !hasProfile || !p.HasArtifacts() {
		return "Add your birth details so I can read your chart; until then I can only speak in generalities. " +
			"Whatever you are asking about, this is a good time to gather facts before acting.", emptyCtx
	}

	grounding := map[string]interface{}{
		"moon_sign":      p.MoonSign,
		"ascendant_sign": p.AscendantSign,
		"nakshatra":      p.Nakshatra,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "With your Moon in %s and %s rising, ", p.MoonSign, p.AscendantSign)
	if p.CurrentDasha != nil {
		grounding["maha_dasha"] = p.CurrentDasha.MahaDasha
		grounding["antar_dasha"] = p.CurrentDasha.AntarDasha
		fmt.Fprintf(&b, "you are in your %s maha dasha (%s antar dasha). ",
			p.CurrentDasha.MahaDasha, p.CurrentDasha.AntarDasha)
	}
	b.WriteString("The chart favors steady, deliberate moves on this question over quick ones; ")
	fmt.Fprintf(&b, "your %s nakshatra rewards patience here.", p.Nakshatra)

	ctxJSON, err := json.Marshal(grounding)
	if err != nil {
		return b.String(), emptyCtx
	}
	return b.String(), datatypes.JSON(ctxJSON)
}

func (s *ChatService) History(userID uuid.UUID, page, pageSize int) ([]models.ChatMessage, int64, error) {
	var msgs []models.ChatMessage
	var total int64

	if err := s.db.Model(&models.ChatMessage{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&msgs).Error
	if err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}
