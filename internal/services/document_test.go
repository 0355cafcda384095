package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/repositories"
	"alfredoptarigan/career-coach/internal/testhelpers"
)

type documentFixture struct {
	service   DocumentService
	repo      repositories.DocumentRepository
	ai        *fakeAI
	collector *resultCollector
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	repo := repositories.NewDocumentRepository(db)
	ai := &fakeAI{}
	collector := &resultCollector{}

	worker := NewScoringWorker(NewDocumentScorer(repo, ai), logger.Nop(), nil, 1, 10, WithObserver(collector.observe))
	worker.Start(context.Background())
	t.Cleanup(worker.Stop)

	return &documentFixture{
		service:   NewDocumentService(repo, worker, logger.Nop()),
		repo:      repo,
		ai:        ai,
		collector: collector,
	}
}

func TestDocumentService_CreateDoesNotScore(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	ownerID := uuid.New()

	doc, err := f.service.CreateDocument(ctx, ownerID, map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.CurrentVersion)
	assert.Equal(t, ownerID, doc.OwnerID)
	assert.Equal(t, map[string]interface{}{"name": "Ada"}, doc.Content)

	_, _, scores := f.ai.counts()
	assert.Zero(t, scores)
}

func TestDocumentService_UpdateScoresNewVersion(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	f.ai.scoreFn = func(content map[string]interface{}) (*DocumentScore, error) {
		return &DocumentScore{Score: 91, Reason: "excellent"}, nil
	}

	doc, err := f.service.CreateDocument(ctx, uuid.New(), map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)

	updated, err := f.service.UpdateDocument(ctx, doc.ID, map[string]interface{}{"name": "Ada", "skills": []interface{}{"go"}})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)
	assert.NotContains(t, updated.Content, models.AIMarkKey)

	results := f.collector.waitFor(t, 1)
	assert.Equal(t, OutcomeScored, results[0].Outcome)
	assert.Equal(t, 2, results[0].VersionNumber)

	// the model sees the content as submitted
	f.ai.mu.Lock()
	scored := f.ai.scoreCalls[0]
	f.ai.mu.Unlock()
	assert.Equal(t, "Ada", scored["name"])
	assert.NotContains(t, scored, models.AIMarkKey)

	latest, err := f.service.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", latest.Content["name"])
	assert.Equal(t, []interface{}{"go"}, latest.Content["skills"])
	assert.Equal(t, 91, latest.Content[models.AIMarkKey])
	assert.Equal(t, "excellent", latest.Content[models.ReasonKey])

	v1, err := f.service.GetDocumentVersion(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.False(t, v1.Scored)
	assert.Equal(t, map[string]interface{}{"name": "Ada"}, v1.Content)

	v2, err := f.service.GetDocumentVersion(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.True(t, v2.Scored)
	assert.Equal(t, 91, v2.Content[models.AIMarkKey])
}

func TestDocumentService_ScoringFailureLeavesVersionUnscored(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	f.ai.scoreFn = func(content map[string]interface{}) (*DocumentScore, error) {
		return nil, errors.New("model unavailable")
	}

	doc, err := f.service.CreateDocument(ctx, uuid.New(), map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)
	_, err = f.service.UpdateDocument(ctx, doc.ID, map[string]interface{}{"name": "Grace"})
	require.NoError(t, err)

	results := f.collector.waitFor(t, 1)
	assert.Equal(t, OutcomeFailed, results[0].Outcome)
	assert.Error(t, results[0].Err)

	v2, err := f.service.GetDocumentVersion(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.False(t, v2.Scored)
	assert.Equal(t, map[string]interface{}{"name": "Grace"}, v2.Content)
}

func TestDocumentService_ScoringDeletedDocumentIsSkipped(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := repositories.NewDocumentRepository(db)
	scorer := NewDocumentScorer(repo, &fakeAI{})

	result := scorer.ScoreLatest(context.Background(), uuid.New())
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.NoError(t, result.Err)
}

func TestDocumentService_GetOwnedDocument(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	ownerID := uuid.New()

	doc, err := f.service.CreateDocument(ctx, ownerID, map[string]interface{}{})
	require.NoError(t, err)

	owned, err := f.service.GetOwnedDocument(ctx, doc.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, owned.ID)

	_, err = f.service.GetOwnedDocument(ctx, doc.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.service.GetOwnedDocument(ctx, uuid.New(), ownerID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDocumentService_UpdateMissingDocument(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.service.UpdateDocument(context.Background(), uuid.New(), map[string]interface{}{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, scores := f.ai.counts()
	assert.Zero(t, scores)
}

func TestDocumentService_ListAndDelete(t *testing.T) {
	f := newDocumentFixture(t)
	ctx := context.Background()
	ownerID := uuid.New()

	first, err := f.service.CreateDocument(ctx, ownerID, map[string]interface{}{"n": 1})
	require.NoError(t, err)
	_, err = f.service.CreateDocument(ctx, ownerID, map[string]interface{}{"n": 2})
	require.NoError(t, err)

	docs, err := f.service.ListDocuments(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID)

	require.NoError(t, f.service.DeleteDocument(ctx, first.ID))

	_, err = f.service.GetDocument(ctx, first.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.service.GetDocumentVersion(ctx, first.ID, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	docs, err = f.service.ListDocuments(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
