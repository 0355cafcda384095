package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/auth"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/services"
)

const userLocalKey = "user"

// RequireAuth resolves the bearer token to a user and stores it on the context.
func RequireAuth(authService services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return apperrors.ErrUnauthenticated
		}

		user, err := authService.UserFromToken(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(userLocalKey).(*models.User)
	if !ok || user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}
