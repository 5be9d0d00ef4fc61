package models

import "time"

// Conversation stores the pair ordered so UserAID < UserBID.
type Conversation struct {
	Model
	UserAID       uint       `gorm:"uniqueIndex:idx_conversation_pair;not null" json:"user_a_id"`
	UserBID       uint       `gorm:"uniqueIndex:idx_conversation_pair;index;not null" json:"user_b_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
}

func (c *Conversation) HasParticipant(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

type Message struct {
	Model
	ConversationID uint       `gorm:"index;not null" json:"conversation_id"`
	SenderID       uint       `gorm:"index;not null" json:"sender_id"`
	Body           string     `gorm:"not null" json:"body"`
	ReadAt         *time.Time `json:"read_at"`
}
