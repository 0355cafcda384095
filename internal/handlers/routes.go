package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-coach/internal/services"
)

type Handlers struct {
	Auth      *AuthHandler
	Documents *DocumentHandler
	Interview *InterviewHandler
}

// RegisterRoutes mounts every endpoint on the /api router.
func RegisterRoutes(api fiber.Router, h Handlers, authService services.AuthService) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	requireAuth := RequireAuth(authService)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.HandleRegister)
	authGroup.Post("/login", h.Auth.HandleLogin)
	authGroup.Get("/me", requireAuth, h.Auth.HandleMe)
	authGroup.Get("/google/login", h.Auth.HandleGoogleLogin)
	authGroup.Get("/google/callback", h.Auth.HandleGoogleCallback)

	documents := api.Group("/documents", requireAuth)
	documents.Post("/", h.Documents.HandleCreate)
	documents.Get("/", h.Documents.HandleList)
	documents.Get("/:id", h.Documents.HandleGet)
	documents.Put("/:id", h.Documents.HandleUpdate)
	documents.Delete("/:id", h.Documents.HandleDelete)
	documents.Get("/:id/versions/:version", h.Documents.HandleGetVersion)

	chats := api.Group("/interview/chats", requireAuth)
	chats.Post("/", h.Interview.HandleCreateChat)
	chats.Get("/", h.Interview.HandleListChats)
	chats.Get("/:id", h.Interview.HandleGetChat)
	chats.Delete("/:id", h.Interview.HandleDeleteChat)
	chats.Post("/:id/messages", h.Interview.HandleSendMessage)
}
