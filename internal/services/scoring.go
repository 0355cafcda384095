package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"alfredoptarigan/career-coach/internal/apperrors"
)

const (
	MinScore = 1
	MaxScore = 100
)

type DocumentScore struct {
	Score  int
	Reason string
}

type scoreResponse struct {
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

// ParseScoreResponse recovers the score object from model output, which may
// be wrapped in markdown or prose. Scores are rounded and clamped to 1..100.
func ParseScoreResponse(text string) (*DocumentScore, error) {
	jsonStr := extractJSON(text)

	var resp scoreResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrScoreParse, err)
	}
	if resp.Score == nil {
		return nil, fmt.Errorf("%w: missing score field", apperrors.ErrScoreParse)
	}

	return &DocumentScore{
		Score:  clampScore(*resp.Score),
		Reason: strings.TrimSpace(resp.Reason),
	}, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return MinScore
	}
	rounded := math.Round(v)
	if rounded < MinScore {
		return MinScore
	}
	if rounded > MaxScore {
		return MaxScore
	}
	return int(rounded)
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}

	return strings.TrimSpace(text)
}
