package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/repositories"
)

// ScoringResult describes how one scoring task ended.
type ScoringResult struct {
	DocumentID    uuid.UUID
	VersionNumber int
	Score         *DocumentScore
	Outcome       string
	Err           error
}

type DocumentScorer interface {
	ScoreLatest(ctx context.Context, documentID uuid.UUID) ScoringResult
}

type documentScorer struct {
	docRepo repositories.DocumentRepository
	ai      AIGateway
}

func NewDocumentScorer(docRepo repositories.DocumentRepository, ai AIGateway) DocumentScorer {
	return &documentScorer{docRepo: docRepo, ai: ai}
}

// ScoreLatest scores the document's current version and stores the score on
// that same version. A document deleted before or during scoring is skipped.
func (s *documentScorer) ScoreLatest(ctx context.Context, documentID uuid.UUID) ScoringResult {
	result := ScoringResult{DocumentID: documentID}

	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			result.Outcome = OutcomeSkipped
			return result
		}
		return failed(result, err)
	}

	version, err := doc.LatestVersion()
	if err != nil {
		return failed(result, err)
	}
	result.VersionNumber = version.VersionNumber

	content, err := version.OriginalContent()
	if err != nil {
		return failed(result, err)
	}

	score, err := s.ai.ScoreDocument(ctx, content)
	if err != nil {
		return failed(result, fmt.Errorf("failed to score document: %w", err))
	}
	result.Score = score

	updated, err := s.docRepo.UpdateVersionScore(ctx, documentID, version.VersionNumber, score.Score, score.Reason)
	if err != nil {
		return failed(result, err)
	}
	if !updated {
		result.Outcome = OutcomeSkipped
		return result
	}

	result.Outcome = OutcomeScored
	return result
}

func failed(result ScoringResult, err error) ScoringResult {
	result.Outcome = OutcomeFailed
	result.Err = err
	return result
}
