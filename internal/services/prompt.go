package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/career-coach/internal/models"
)

const (
	// InterviewerInstruction is prepended to every reply request.
	InterviewerInstruction = "You act like a strict but constructive interviewer " +
		"at a technical interview. Ask clarifying questions, " +
		"evaluate the answers and give brief feedback."

	// OpeningLine answers the first turn of a chat without calling the model.
	OpeningLine = "Hello! I will be your interviewer today. " +
		"Which position are you preparing for?"

	defaultInterviewerInstruction = "You are a professional technical interviewer. " +
		"Ask follow-up questions, assess answers and provide concise feedback."

	titleInstruction = "Generate a short, clear headline for this interview chat. " +
		"Maximum 7 words. No quotation marks or unnecessary comments. " +
		"Just display one headline."

	scoringInstruction = "You are an expert HR recruiter reviewing a candidate's resume. " +
		"The resume is given as a JSON document of arbitrary shape."
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildReplyPrompt splits a history into a system instruction and a
// transcript. The first system turn becomes the instruction; later system
// turns stay in the transcript.
func (pb *PromptBuilder) BuildReplyPrompt(history []models.ChatTurn) (string, string) {
	instruction := ""
	var lines []string

	for _, turn := range history {
		if turn.Role == models.RoleSystem {
			if instruction == "" {
				instruction = turn.Content
				continue
			}
		}
		lines = append(lines, formatTurn(turn))
	}

	if instruction == "" {
		instruction = defaultInterviewerInstruction
	}

	return instruction, strings.Join(lines, "\n")
}

// BuildTitlePrompt renders the non-system part of a conversation for title generation.
func (pb *PromptBuilder) BuildTitlePrompt(history []models.ChatTurn) (string, string) {
	var lines []string
	for _, turn := range history {
		if turn.Role == models.RoleSystem {
			continue
		}
		lines = append(lines, formatTurn(turn))
	}

	if len(lines) == 0 {
		lines = append(lines, "USER: Interview starts.")
	}

	return titleInstruction, strings.Join(lines, "\n")
}

// BuildScoringPrompt asks for a 1-100 score over a resume JSON document.
func (pb *PromptBuilder) BuildScoringPrompt(resumeJSON string) (string, string) {
	prompt := fmt.Sprintf(`CANDIDATE RESUME (JSON):
%s

Evaluate the overall quality of this resume: clarity, relevance of experience,
measurable achievements, skills coverage and structure.

Return your response in the following JSON format:
{
  "score": <integer from 1 to 100>,
  "reason": "<2-4 sentences explaining the score>"
}

Return ONLY the JSON object.`, resumeJSON)

	return scoringInstruction, prompt
}

func formatTurn(turn models.ChatTurn) string {
	return fmt.Sprintf("%s: %s", strings.ToUpper(string(turn.Role)), turn.Content)
}
