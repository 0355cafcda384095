package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/models"
)

type DocumentRepository interface {
	Create(ctx context.Context, ownerID uuid.UUID, content datatypes.JSON) (*models.Document, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	FindVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*models.DocumentVersion, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Document, error)
	AppendVersion(ctx context.Context, documentID uuid.UUID, content datatypes.JSON) (*models.Document, error)
	UpdateVersionScore(ctx context.Context, documentID uuid.UUID, versionNumber int, score int, reason string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func orderedVersions(db *gorm.DB) *gorm.DB {
	return db.Order("version_number ASC")
}

// Create implements DocumentRepository. The document and its first version
// are inserted together.
func (r *documentRepository) Create(ctx context.Context, ownerID uuid.UUID, content datatypes.JSON) (*models.Document, error) {
	doc := &models.Document{
		OwnerID:        ownerID,
		CurrentVersion: 1,
		Versions: []models.DocumentVersion{
			{VersionNumber: 1, Content: content},
		},
	}

	if err := r.db.WithContext(ctx).Omit("Owner").Create(doc).Error; err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	return doc, nil
}

// FindByID implements DocumentRepository.
func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Preload("Versions", orderedVersions).
		Where("id = ?", id).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("document not found: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &doc, nil
}

// FindVersion implements DocumentRepository.
func (r *documentRepository) FindVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*models.DocumentVersion, error) {
	var version models.DocumentVersion
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND version_number = ?", documentID, versionNumber).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("version not found: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find version: %w", err)
	}

	return &version, nil
}

// ListByOwner implements DocumentRepository. Documents come back in creation order.
func (r *documentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.WithContext(ctx).
		Preload("Versions", orderedVersions).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// AppendVersion implements DocumentRepository. The counter bump and the
// version insert share one transaction, so concurrent appends cannot leave
// gaps or reuse a number.
func (r *documentRepository) AppendVersion(ctx context.Context, documentID uuid.UUID, content datatypes.JSON) (*models.Document, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Document{}).
			Where("id = ?", documentID).
			Updates(map[string]interface{}{
				"current_version": gorm.Expr("current_version + ?", 1),
				"updated_at":      time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to bump version: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("document not found: %w", apperrors.ErrNotFound)
		}

		var doc models.Document
		if err := tx.Select("id", "current_version").Where("id = ?", documentID).First(&doc).Error; err != nil {
			return fmt.Errorf("failed to read version counter: %w", err)
		}

		version := models.DocumentVersion{
			DocumentID:    documentID,
			VersionNumber: doc.CurrentVersion,
			Content:       content,
		}
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, documentID)
}

// UpdateVersionScore implements DocumentRepository. It reports false when the
// version no longer exists.
func (r *documentRepository) UpdateVersionScore(ctx context.Context, documentID uuid.UUID, versionNumber int, score int, reason string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.DocumentVersion{}).
		Where("document_id = ? AND version_number = ?", documentID, versionNumber).
		Updates(map[string]interface{}{
			"ai_mark":   score,
			"reason":    reason,
			"scored_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update version score: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// Delete implements DocumentRepository. Deleting a missing document is not an error.
func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.DocumentVersion{}).Error; err != nil {
			return fmt.Errorf("failed to delete versions: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	})
}
