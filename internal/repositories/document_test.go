package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/testhelpers"
)

func content(t *testing.T, m map[string]interface{}) datatypes.JSON {
	t.Helper()
	raw, err := models.NewContent(m)
	require.NoError(t, err)
	return raw
}

func TestDocumentRepository_CreateAndFind(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	doc, err := repo.Create(ctx, ownerID, content(t, map[string]interface{}{"name": "Ada"}))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.CurrentVersion)
	assert.Equal(t, ownerID, doc.OwnerID)

	found, err := repo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, found.Versions, 1)
	assert.Equal(t, 1, found.Versions[0].VersionNumber)

	original, err := found.Versions[0].OriginalContent()
	require.NoError(t, err)
	assert.Equal(t, "Ada", original["name"])
}

func TestDocumentRepository_FindByID_NotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDocumentRepository_AppendVersion(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc, err := repo.Create(ctx, uuid.New(), content(t, map[string]interface{}{"v": 1}))
	require.NoError(t, err)

	updated, err := repo.AppendVersion(ctx, doc.ID, content(t, map[string]interface{}{"v": 2}))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentVersion)
	require.Len(t, updated.Versions, 2)
	assert.Equal(t, 1, updated.Versions[0].VersionNumber)
	assert.Equal(t, 2, updated.Versions[1].VersionNumber)

	latest, err := updated.LatestVersion()
	require.NoError(t, err)
	latestContent, err := latest.OriginalContent()
	require.NoError(t, err)
	assert.Equal(t, float64(2), latestContent["v"])
}

func TestDocumentRepository_AppendVersion_MissingDocument(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)

	_, err := repo.AppendVersion(context.Background(), uuid.New(), content(t, nil))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDocumentRepository_AppendVersion_Concurrent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc, err := repo.Create(ctx, uuid.New(), content(t, nil))
	require.NoError(t, err)

	const appends = 8
	next := content(t, map[string]interface{}{"k": "v"})
	var wg sync.WaitGroup
	errs := make(chan error, appends)
	for i := 0; i < appends; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AppendVersion(ctx, doc.ID, next)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	found, err := repo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, appends+1, found.CurrentVersion)
	require.Len(t, found.Versions, appends+1)
	for i, v := range found.Versions {
		assert.Equal(t, i+1, v.VersionNumber)
	}
}

func TestDocumentRepository_FindVersion(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc, err := repo.Create(ctx, uuid.New(), content(t, map[string]interface{}{"v": 1}))
	require.NoError(t, err)

	version, err := repo.FindVersion(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, version.VersionNumber)

	_, err = repo.FindVersion(ctx, doc.ID, 2)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDocumentRepository_UpdateVersionScore(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc, err := repo.Create(ctx, uuid.New(), content(t, map[string]interface{}{"name": "Ada"}))
	require.NoError(t, err)

	ok, err := repo.UpdateVersionScore(ctx, doc.ID, 1, 77, "solid")
	require.NoError(t, err)
	assert.True(t, ok)

	version, err := repo.FindVersion(ctx, doc.ID, 1)
	require.NoError(t, err)
	require.True(t, version.Scored())
	assert.Equal(t, 77, *version.AIMark)
	assert.Equal(t, "solid", *version.Reason)
	assert.NotNil(t, version.ScoredAt)

	original, err := version.OriginalContent()
	require.NoError(t, err)
	assert.NotContains(t, original, models.AIMarkKey)

	ok, err = repo.UpdateVersionScore(ctx, doc.ID, 5, 10, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentRepository_ListByOwner(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()
	ownerID := uuid.New()

	first, err := repo.Create(ctx, ownerID, content(t, nil))
	require.NoError(t, err)
	second, err := repo.Create(ctx, ownerID, content(t, nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, uuid.New(), content(t, nil))
	require.NoError(t, err)

	docs, err := repo.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
	assert.Len(t, docs[0].Versions, 1)
}

func TestDocumentRepository_Delete(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc, err := repo.Create(ctx, uuid.New(), content(t, nil))
	require.NoError(t, err)
	_, err = repo.AppendVersion(ctx, doc.ID, content(t, nil))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, doc.ID))

	_, err = repo.FindByID(ctx, doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var versions int64
	require.NoError(t, db.Model(&models.DocumentVersion{}).Where("document_id = ?", doc.ID).Count(&versions).Error)
	assert.Zero(t, versions)

	// deleting again is a no-op
	assert.NoError(t, repo.Delete(ctx, doc.ID))
}
