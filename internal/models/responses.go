package models

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type DocumentResponse struct {
	ID             uuid.UUID              `json:"id"`
	OwnerID        uuid.UUID              `json:"owner_id"`
	CurrentVersion int                    `json:"current_version"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Content        map[string]interface{} `json:"content"`
}

type DocumentVersionResponse struct {
	VersionNumber int                    `json:"version_number"`
	Content       map[string]interface{} `json:"content"`
	Scored        bool                   `json:"scored"`
	CreatedAt     time.Time              `json:"created_at"`
}

type ChatResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title"`
	Position  *string   `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageResponse struct {
	ID        uuid.UUID   `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

type ChatDetailResponse struct {
	ChatResponse
	Messages []MessageResponse `json:"messages"`
}

type MessageExchangeResponse struct {
	UserMessage MessageResponse `json:"user_message"`
	AIMessage   MessageResponse `json:"ai_message"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}

func NewChatResponse(c *InterviewChat) ChatResponse {
	return ChatResponse{
		ID:        c.ID,
		Title:     c.Title,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewMessageResponse(m *InterviewMessage) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
