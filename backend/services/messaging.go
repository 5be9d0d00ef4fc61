package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"learnity/backend/models"
	"learnity/backend/utils"

	"gorm.io/gorm"
)

const MaxMessageLength = 4000

type MessagingService struct {
	DB  *gorm.DB
	Now func() time.Time
}

type ConversationSummary struct {
	ID            uint            `json:"id"`
	Other         *models.User    `json:"other"`
	LastMessage   *models.Message `json:"last_message"`
	LastMessageAt *time.Time      `json:"last_message_at"`
	UnreadCount   int64           `json:"unread_count"`
}

func orderedPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

func (s *MessagingService) Send(ctx context.Context, senderID, recipientID uint, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, utils.ValidationErr("message body is required")
	}
	if utf8.RuneCountInString(body) > MaxMessageLength {
		return nil, utils.ValidationErr(fmt.Sprintf("message body must be at most %d characters", MaxMessageLength))
	}
	if senderID == recipientID {
		return nil, utils.BadRequestErr("you cannot message yourself")
	}

	now := nowUTC(s.Now)
	msg := &models.Message{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipient models.User
		if err := tx.Where("id = ? AND is_active = ?", recipientID, true).First(&recipient).Error; err != nil {
			return notFound(err, "recipient")
		}

		a, b := orderedPair(senderID, recipientID)
		conv := models.Conversation{}
		if err := tx.Where(models.Conversation{UserAID: a, UserBID: b}).FirstOrCreate(&conv).Error; err != nil {
			return err
		}

		*msg = models.Message{ConversationID: conv.ID, SenderID: senderID, Body: body}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).UpdateColumn("last_message_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessagingService) Conversations(ctx context.Context, userID uint) ([]ConversationSummary, error) {
	db := s.DB.WithContext(ctx)
	var convs []models.Conversation
	if err := db.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("last_message_at DESC, id DESC").
		Find(&convs).Error; err != nil {
		return nil, err
	}

	otherIDs := make([]uint, 0, len(convs))
	for i := range convs {
		otherIDs = append(otherIDs, convs[i].OtherParticipant(userID))
	}
	var users []models.User
	if len(otherIDs) > 0 {
		if err := db.Where("id IN ?", otherIDs).Find(&users).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		conv := convs[i]
		summary := ConversationSummary{
			ID:            conv.ID,
			Other:         byID[conv.OtherParticipant(userID)],
			LastMessageAt: conv.LastMessageAt,
		}
		var last models.Message
		err := db.Where("conversation_id = ?", conv.ID).Order("id DESC").Limit(1).Find(&last).Error
		if err != nil {
			return nil, err
		}
		if last.ID != 0 {
			summary.LastMessage = &last
		}
		if err := db.Model(&models.Message{}).
			Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conv.ID, userID).
			Count(&summary.UnreadCount).Error; err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *MessagingService) participant(tx *gorm.DB, userID, convID uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := tx.First(&conv, convID).Error; err != nil {
		return nil, notFound(err, "conversation")
	}
	if !conv.HasParticipant(userID) {
		return nil, utils.ForbiddenErr("you are not part of this conversation")
	}
	return &conv, nil
}

// Messages pages through a conversation oldest first.
func (s *MessagingService) Messages(ctx context.Context, userID, convID uint, page utils.Page) ([]models.Message, int64, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.participant(db, userID, convID); err != nil {
		return nil, 0, err
	}
	var (
		msgs  []models.Message
		total int64
	)
	q := db.Model(&models.Message{}).Where("conversation_id = ?", convID).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id ASC").Scopes(page.Scope).Find(&msgs).Error
	return msgs, total, err
}

// MarkRead marks the other party's unread messages as read and returns how many changed.
func (s *MessagingService) MarkRead(ctx context.Context, userID, convID uint) (int64, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.participant(db, userID, convID); err != nil {
		return 0, err
	}
	res := db.Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", convID, userID).
		UpdateColumn("read_at", nowUTC(s.Now))
	return res.RowsAffected, res.Error
}
