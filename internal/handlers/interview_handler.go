package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
}

func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

// HandleCreateChat handles POST /interview/chats
func (h *InterviewHandler) HandleCreateChat(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.ChatCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	chat, err := h.interviewService.CreateChat(c.UserContext(), user.ID, req.Title, req.Position)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(chat)
}

// HandleListChats handles GET /interview/chats
func (h *InterviewHandler) HandleListChats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	chats, err := h.interviewService.ListChats(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(chats)
}

// HandleGetChat handles GET /interview/chats/:id
func (h *InterviewHandler) HandleGetChat(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	chatID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	chat, err := h.interviewService.GetChatDetail(c.UserContext(), chatID, user.ID)
	if err != nil {
		return chatNotFound(err)
	}

	return c.JSON(chat)
}

// HandleDeleteChat handles DELETE /interview/chats/:id
func (h *InterviewHandler) HandleDeleteChat(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	chatID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	ok, err := h.interviewService.DeleteChat(c.UserContext(), chatID, user.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Chat not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSendMessage handles POST /interview/chats/:id/messages
func (h *InterviewHandler) HandleSendMessage(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	chatID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req models.MessageCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	exchange, err := h.interviewService.SendMessage(c.UserContext(), chatID, user.ID, req.Content)
	if err != nil {
		return chatNotFound(err)
	}

	return c.JSON(exchange)
}

func chatNotFound(err error) error {
	if code, _ := statusFor(err); code == fiber.StatusNotFound {
		return fiber.NewError(fiber.StatusNotFound, "Chat not found")
	}
	return err
}
