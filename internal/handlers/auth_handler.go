package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
	google      services.GoogleOAuthService
	states      services.OAuthStateStore
	log         *logger.Logger
}

// NewAuthHandler wires the auth endpoints. google and states may be nil, in
// which case the Google endpoints answer 503.
func NewAuthHandler(
	authService services.AuthService,
	google services.GoogleOAuthService,
	states services.OAuthStateStore,
	log *logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		google:      google,
		states:      states,
		log:         log.With("handler", "AuthHandler"),
	}
}

// HandleRegister handles POST /auth/register
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.CredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.CredentialsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// HandleMe handles GET /auth/me
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(models.NewUserResponse(user))
}

// HandleGoogleLogin handles GET /auth/google/login
func (h *AuthHandler) HandleGoogleLogin(c *fiber.Ctx) error {
	if err := h.requireGoogle(); err != nil {
		return err
	}

	state, err := h.states.Issue(c.UserContext())
	if err != nil {
		return err
	}

	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// HandleGoogleCallback handles GET /auth/google/callback
func (h *AuthHandler) HandleGoogleCallback(c *fiber.Ctx) error {
	if err := h.requireGoogle(); err != nil {
		return err
	}

	code := c.Query("code")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Authorization code not provided")
	}

	valid, err := h.states.Consume(c.UserContext(), c.Query("state"))
	if err != nil {
		return err
	}
	if !valid {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid or expired state")
	}

	email, err := h.google.ExchangeEmail(c.UserContext(), code)
	if err != nil {
		h.log.Warn("google exchange failed", "error", err)
		return fiber.NewError(fiber.StatusUnauthorized, "Failed to authenticate with Google")
	}

	resp, err := h.authService.LoginWithGoogle(c.UserContext(), email)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func (h *AuthHandler) requireGoogle() error {
	if h.google == nil || h.states == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Google login is not configured")
	}
	return nil
}
