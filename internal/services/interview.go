package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/repositories"
)

type InterviewService interface {
	CreateChat(ctx context.Context, ownerID uuid.UUID, title, position *string) (*models.ChatResponse, error)
	ListChats(ctx context.Context, ownerID uuid.UUID) ([]models.ChatResponse, error)
	GetChatDetail(ctx context.Context, chatID, ownerID uuid.UUID) (*models.ChatDetailResponse, error)
	DeleteChat(ctx context.Context, chatID, ownerID uuid.UUID) (bool, error)
	SendMessage(ctx context.Context, chatID, ownerID uuid.UUID, content string) (*models.MessageExchangeResponse, error)
}

type interviewService struct {
	repo repositories.InterviewRepository
	ai   AIGateway
	log  *logger.Logger
}

func NewInterviewService(repo repositories.InterviewRepository, ai AIGateway, log *logger.Logger) InterviewService {
	return &interviewService{
		repo: repo,
		ai:   ai,
		log:  log.With("service", "InterviewService"),
	}
}

func (s *interviewService) CreateChat(ctx context.Context, ownerID uuid.UUID, title, position *string) (*models.ChatResponse, error) {
	chat := &models.InterviewChat{
		OwnerID:  ownerID,
		Title:    title,
		Position: position,
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return nil, err
	}
	resp := models.NewChatResponse(chat)
	return &resp, nil
}

func (s *interviewService) ListChats(ctx context.Context, ownerID uuid.UUID) ([]models.ChatResponse, error) {
	chats, err := s.repo.ListChats(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatResponse, 0, len(chats))
	for i := range chats {
		out = append(out, models.NewChatResponse(&chats[i]))
	}
	return out, nil
}

// GetChatDetail reports chats owned by someone else as not found.
func (s *interviewService) GetChatDetail(ctx context.Context, chatID, ownerID uuid.UUID) (*models.ChatDetailResponse, error) {
	chat, err := s.repo.FindChat(ctx, chatID, ownerID)
	if err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	detail := &models.ChatDetailResponse{
		ChatResponse: models.NewChatResponse(chat),
		Messages:     make([]models.MessageResponse, 0, len(msgs)),
	}
	for i := range msgs {
		detail.Messages = append(detail.Messages, models.NewMessageResponse(&msgs[i]))
	}
	return detail, nil
}

func (s *interviewService) DeleteChat(ctx context.Context, chatID, ownerID uuid.UUID) (bool, error) {
	chat, err := s.repo.FindChat(ctx, chatID, ownerID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := s.repo.DeleteChat(ctx, chat.ID); err != nil {
		return false, err
	}
	return true, nil
}

// SendMessage stores the user's turn, answers it and stores the answer.
// The user's turn stays persisted when the reply cannot be generated.
func (s *interviewService) SendMessage(ctx context.Context, chatID, ownerID uuid.UUID, content string) (*models.MessageExchangeResponse, error) {
	chat, err := s.repo.FindChat(ctx, chatID, ownerID)
	if err != nil {
		return nil, err
	}

	userMsg, err := s.repo.AddMessage(ctx, chat.ID, models.RoleUser, content)
	if err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	history := make([]models.ChatTurn, 0, len(msgs))
	hasAssistant := false
	for _, m := range msgs {
		if m.Role == models.RoleAssistant {
			hasAssistant = true
		}
		history = append(history, models.ChatTurn{Role: m.Role, Content: m.Content})
	}

	reply := OpeningLine
	if hasAssistant {
		prompt := make([]models.ChatTurn, 0, len(history)+1)
		prompt = append(prompt, models.ChatTurn{Role: models.RoleSystem, Content: InterviewerInstruction})
		prompt = append(prompt, history...)

		reply, err = s.ai.GenerateReply(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to generate interview reply: %w", err)
		}
	}

	aiMsg, err := s.repo.AddMessage(ctx, chat.ID, models.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}

	if !chat.HasTitle() {
		s.assignTitle(ctx, chat.ID, history)
	}

	return &models.MessageExchangeResponse{
		UserMessage: models.NewMessageResponse(userMsg),
		AIMessage:   models.NewMessageResponse(aiMsg),
	}, nil
}

// assignTitle is best effort; failures leave the chat untitled until the next send.
func (s *interviewService) assignTitle(ctx context.Context, chatID uuid.UUID, history []models.ChatTurn) {
	title, err := s.ai.GenerateTitle(ctx, history)
	title = strings.TrimSpace(title)
	if err != nil {
		s.log.Warn("title generation failed", "chat_id", chatID, "error", err)
		return
	}
	if title == "" {
		s.log.Warn("title generation returned empty title", "chat_id", chatID)
		return
	}
	if err := s.repo.UpdateTitle(ctx, chatID, title); err != nil {
		s.log.Warn("failed to store chat title", "chat_id", chatID, "error", err)
	}
}
