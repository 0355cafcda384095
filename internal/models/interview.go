package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type InterviewChat struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title     *string   `gorm:"type:text" json:"title"`
	Position  *string   `gorm:"type:text" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner    User               `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []InterviewMessage `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"-"`
}

func (InterviewChat) TableName() string {
	return "interview_chats"
}

func (c *InterviewChat) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *InterviewChat) HasTitle() bool {
	return c.Title != nil && *c.Title != ""
}

type InterviewMessage struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ChatID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_chat_created" json:"chat_id"`
	Role      MessageRole `gorm:"type:text;not null" json:"role"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `gorm:"index:idx_chat_created" json:"created_at"`
}

func (InterviewMessage) TableName() string {
	return "interview_messages"
}

func (m *InterviewMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ChatTurn is one role/content pair handed to the AI gateway.
type ChatTurn struct {
	Role    MessageRole
	Content string
}
