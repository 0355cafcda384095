package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/models"
)

// AIGateway is the generative AI capability used by the workflows.
type AIGateway interface {
	GenerateReply(ctx context.Context, history []models.ChatTurn) (string, error)
	GenerateTitle(ctx context.Context, history []models.ChatTurn) (string, error)
	ScoreDocument(ctx context.Context, content map[string]interface{}) (*DocumentScore, error)
}

type geminiService struct {
	client        *genai.Client
	modelName     string
	promptBuilder *PromptBuilder
	metrics       *Metrics
}

func NewGeminiService(apiKey, model string, metrics *Metrics) (AIGateway, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return NewGeminiServiceWithClient(client, model, metrics), nil
}

func NewGeminiServiceWithClient(client *genai.Client, model string, metrics *Metrics) AIGateway {
	return &geminiService{
		client:        client,
		modelName:     model,
		promptBuilder: NewPromptBuilder(),
		metrics:       metrics,
	}
}

// GenerateReply implements AIGateway.
func (g *geminiService) GenerateReply(ctx context.Context, history []models.ChatTurn) (string, error) {
	instruction, transcript := g.promptBuilder.BuildReplyPrompt(history)

	reply, err := g.generateText(ctx, instruction, transcript, 0.4)
	g.metrics.AIRequest(OpReply, err)
	if err != nil {
		return "", err
	}
	return reply, nil
}

// GenerateTitle implements AIGateway.
func (g *geminiService) GenerateTitle(ctx context.Context, history []models.ChatTurn) (string, error) {
	instruction, transcript := g.promptBuilder.BuildTitlePrompt(history)

	title, err := g.generateText(ctx, instruction, transcript, 0.3)
	g.metrics.AIRequest(OpTitle, err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

// ScoreDocument implements AIGateway.
func (g *geminiService) ScoreDocument(ctx context.Context, content map[string]interface{}) (*DocumentScore, error) {
	raw, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resume: %w", err)
	}

	instruction, prompt := g.promptBuilder.BuildScoringPrompt(string(raw))

	text, err := g.generateText(ctx, instruction, prompt, 0.2)
	if err != nil {
		g.metrics.AIRequest(OpScore, err)
		return nil, err
	}

	score, err := ParseScoreResponse(text)
	g.metrics.AIRequest(OpScore, err)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrExternalService, err)
	}
	return score, nil
}

func (g *geminiService) generateText(ctx context.Context, instruction, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}
	if instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate text: %v", apperrors.ErrExternalService, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: no response generated", apperrors.ErrExternalService)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: no text content in response", apperrors.ErrExternalService)
	}

	return text, nil
}
