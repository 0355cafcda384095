package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/repositories"
)

type DocumentService interface {
	CreateDocument(ctx context.Context, ownerID uuid.UUID, content map[string]interface{}) (*models.DocumentResponse, error)
	GetDocument(ctx context.Context, documentID uuid.UUID) (*models.DocumentResponse, error)
	GetOwnedDocument(ctx context.Context, documentID, requesterID uuid.UUID) (*models.DocumentResponse, error)
	UpdateDocument(ctx context.Context, documentID uuid.UUID, content map[string]interface{}) (*models.DocumentResponse, error)
	GetDocumentVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*models.DocumentVersionResponse, error)
	DeleteDocument(ctx context.Context, documentID uuid.UUID) error
	ListDocuments(ctx context.Context, ownerID uuid.UUID) ([]models.DocumentResponse, error)
}

type documentService struct {
	docRepo repositories.DocumentRepository
	worker  ScoringWorker
	log     *logger.Logger
}

func NewDocumentService(docRepo repositories.DocumentRepository, worker ScoringWorker, log *logger.Logger) DocumentService {
	return &documentService{
		docRepo: docRepo,
		worker:  worker,
		log:     log.With("service", "DocumentService"),
	}
}

func toDocumentResponse(doc *models.Document) (*models.DocumentResponse, error) {
	latest, err := doc.LatestVersion()
	if err != nil {
		return nil, err
	}
	content, err := latest.MaterializedContent()
	if err != nil {
		return nil, err
	}

	return &models.DocumentResponse{
		ID:             doc.ID,
		OwnerID:        doc.OwnerID,
		CurrentVersion: doc.CurrentVersion,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		Content:        content,
	}, nil
}

func (s *documentService) CreateDocument(ctx context.Context, ownerID uuid.UUID, content map[string]interface{}) (*models.DocumentResponse, error) {
	raw, err := models.NewContent(content)
	if err != nil {
		return nil, err
	}

	doc, err := s.docRepo.Create(ctx, ownerID, raw)
	if err != nil {
		return nil, err
	}

	s.log.Debug("document created", "document_id", doc.ID, "owner_id", ownerID)
	return toDocumentResponse(doc)
}

func (s *documentService) GetDocument(ctx context.Context, documentID uuid.UUID) (*models.DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc)
}

// GetOwnedDocument distinguishes a missing document (ErrNotFound) from one
// owned by somebody else (ErrForbidden).
func (s *documentService) GetOwnedDocument(ctx context.Context, documentID, requesterID uuid.UUID) (*models.DocumentResponse, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != requesterID {
		return nil, fmt.Errorf("document %s: %w", documentID, apperrors.ErrForbidden)
	}
	return doc, nil
}

// UpdateDocument appends a new version and queues it for scoring. The
// scoring outcome never affects the returned view.
func (s *documentService) UpdateDocument(ctx context.Context, documentID uuid.UUID, content map[string]interface{}) (*models.DocumentResponse, error) {
	raw, err := models.NewContent(content)
	if err != nil {
		return nil, err
	}

	doc, err := s.docRepo.AppendVersion(ctx, documentID, raw)
	if err != nil {
		return nil, err
	}

	s.worker.Enqueue(documentID)

	return toDocumentResponse(doc)
}

func (s *documentService) GetDocumentVersion(ctx context.Context, documentID uuid.UUID, versionNumber int) (*models.DocumentVersionResponse, error) {
	version, err := s.docRepo.FindVersion(ctx, documentID, versionNumber)
	if err != nil {
		return nil, err
	}

	content, err := version.MaterializedContent()
	if err != nil {
		return nil, err
	}

	return &models.DocumentVersionResponse{
		VersionNumber: version.VersionNumber,
		Content:       content,
		Scored:        version.Scored(),
		CreatedAt:     version.CreatedAt,
	}, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	if err := s.docRepo.Delete(ctx, documentID); err != nil {
		return err
	}
	s.log.Debug("document deleted", "document_id", documentID)
	return nil
}

func (s *documentService) ListDocuments(ctx context.Context, ownerID uuid.UUID) ([]models.DocumentResponse, error) {
	docs, err := s.docRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	out := make([]models.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp, err := toDocumentResponse(&docs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}
