package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/models"
)

type InterviewRepository interface {
	CreateChat(ctx context.Context, chat *models.InterviewChat) error
	FindChat(ctx context.Context, chatID, ownerID uuid.UUID) (*models.InterviewChat, error)
	ListChats(ctx context.Context, ownerID uuid.UUID) ([]models.InterviewChat, error)
	DeleteChat(ctx context.Context, chatID uuid.UUID) error
	AddMessage(ctx context.Context, chatID uuid.UUID, role models.MessageRole, content string) (*models.InterviewMessage, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.InterviewMessage, error)
	UpdateTitle(ctx context.Context, chatID uuid.UUID, title string) error
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) CreateChat(ctx context.Context, chat *models.InterviewChat) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(chat).Error; err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

// FindChat only matches chats owned by ownerID; anything else is reported as not found.
func (r *interviewRepository) FindChat(ctx context.Context, chatID, ownerID uuid.UUID) (*models.InterviewChat, error) {
	var chat models.InterviewChat
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", chatID, ownerID).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chat not found: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find chat: %w", err)
	}
	return &chat, nil
}

// ListChats returns newest chats first.
func (r *interviewRepository) ListChats(ctx context.Context, ownerID uuid.UUID) ([]models.InterviewChat, error) {
	var chats []models.InterviewChat
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&chats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

func (r *interviewRepository) DeleteChat(ctx context.Context, chatID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&models.InterviewMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Where("id = ?", chatID).Delete(&models.InterviewChat{}).Error; err != nil {
			return fmt.Errorf("failed to delete chat: %w", err)
		}
		return nil
	})
}

// AddMessage commits the message before returning so a following
// ListMessages on the same store observes it.
func (r *interviewRepository) AddMessage(ctx context.Context, chatID uuid.UUID, role models.MessageRole, content string) (*models.InterviewMessage, error) {
	msg := &models.InterviewMessage{
		ChatID:  chatID,
		Role:    role,
		Content: content,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if err := tx.Model(&models.InterviewChat{}).
			Where("id = ?", chatID).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch chat: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns the conversation in ascending creation order.
func (r *interviewRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.InterviewMessage, error) {
	var msgs []models.InterviewMessage
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}

func (r *interviewRepository) UpdateTitle(ctx context.Context, chatID uuid.UUID, title string) error {
	result := r.db.WithContext(ctx).Model(&models.InterviewChat{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"title":      title,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("chat not found: %w", apperrors.ErrNotFound)
	}
	return nil
}
