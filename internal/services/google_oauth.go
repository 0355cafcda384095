package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"alfredoptarigan/career-coach/internal/apperrors"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleOAuthService runs the authorization code flow against Google and
// resolves the account email.
type GoogleOAuthService interface {
	AuthCodeURL(state string) string
	ExchangeEmail(ctx context.Context, code string) (string, error)
}

type googleOAuthService struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleOAuthService(clientID, clientSecret, redirectURL string) GoogleOAuthService {
	return newGoogleOAuthService(&oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}, googleUserInfoURL)
}

func newGoogleOAuthService(config *oauth2.Config, userInfoURL string) *googleOAuthService {
	return &googleOAuthService{config: config, userInfoURL: userInfoURL}
}

func (g *googleOAuthService) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
}

func (g *googleOAuthService) ExchangeEmail(ctx context.Context, code string) (string, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: google code exchange: %v", apperrors.ErrUnauthenticated, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: google userinfo: %v", apperrors.ErrUnauthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: google userinfo status %d", apperrors.ErrUnauthenticated, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: decode userinfo: %v", apperrors.ErrUnauthenticated, err)
	}
	if info.Email == "" {
		return "", fmt.Errorf("%w: google account has no email", apperrors.ErrUnauthenticated)
	}
	if info.EmailVerified != nil && !*info.EmailVerified {
		return "", fmt.Errorf("%w: google email not verified", apperrors.ErrUnauthenticated)
	}

	return info.Email, nil
}
