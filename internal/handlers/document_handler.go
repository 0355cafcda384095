package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/services"
)

type DocumentHandler struct {
	documentService services.DocumentService
}

func NewDocumentHandler(documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// HandleCreate handles POST /documents
func (h *DocumentHandler) HandleCreate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.DocumentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	doc, err := h.documentService.CreateDocument(c.UserContext(), user.ID, req.Content)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// HandleList handles GET /documents
func (h *DocumentHandler) HandleList(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	docs, err := h.documentService.ListDocuments(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(docs)
}

// HandleGet handles GET /documents/:id
func (h *DocumentHandler) HandleGet(c *fiber.Ctx) error {
	doc, err := h.ownedDocument(c)
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// HandleUpdate handles PUT /documents/:id
func (h *DocumentHandler) HandleUpdate(c *fiber.Ctx) error {
	doc, err := h.ownedDocument(c)
	if err != nil {
		return err
	}

	var req models.DocumentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	updated, err := h.documentService.UpdateDocument(c.UserContext(), doc.ID, req.Content)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// HandleGetVersion handles GET /documents/:id/versions/:version
func (h *DocumentHandler) HandleGetVersion(c *fiber.Ctx) error {
	doc, err := h.ownedDocument(c)
	if err != nil {
		return err
	}

	versionNumber, err := intParam(c, "version")
	if err != nil {
		return err
	}

	version, err := h.documentService.GetDocumentVersion(c.UserContext(), doc.ID, versionNumber)
	if err != nil {
		return err
	}

	return c.JSON(version)
}

// HandleDelete handles DELETE /documents/:id
func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	doc, err := h.ownedDocument(c)
	if err != nil {
		return err
	}

	if err := h.documentService.DeleteDocument(c.UserContext(), doc.ID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true})
}

// ownedDocument loads the :id document, answering 404 when missing and 403
// when it belongs to another user.
func (h *DocumentHandler) ownedDocument(c *fiber.Ctx) (*models.DocumentResponse, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, err
	}

	id, err := uuidParam(c, "id")
	if err != nil {
		return nil, err
	}

	return h.documentService.GetOwnedDocument(c.UserContext(), id, user.ID)
}
