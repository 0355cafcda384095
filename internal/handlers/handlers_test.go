package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/auth"
	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/repositories"
	"alfredoptarigan/career-coach/internal/services"
	"alfredoptarigan/career-coach/internal/testhelpers"
)

type stubAI struct {
	reply string
	err   error
}

func (s *stubAI) GenerateReply(ctx context.Context, history []models.ChatTurn) (string, error) {
	return s.reply, s.err
}

func (s *stubAI) GenerateTitle(ctx context.Context, history []models.ChatTurn) (string, error) {
	return "Practice Interview", nil
}

func (s *stubAI) ScoreDocument(ctx context.Context, content map[string]interface{}) (*services.DocumentScore, error) {
	return &services.DocumentScore{Score: 70, Reason: "fine"}, nil
}

type stubGoogle struct {
	email string
}

func (s *stubGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (s *stubGoogle) ExchangeEmail(ctx context.Context, code string) (string, error) {
	if code != "good-code" {
		return "", apperrors.ErrUnauthenticated
	}
	return s.email, nil
}

type testApp struct {
	app    *fiber.App
	auth   services.AuthService
	ai     *stubAI
	states services.OAuthStateStore
}

func newTestApp(t *testing.T, withGoogle bool) *testApp {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	log := logger.Nop()

	userRepo := repositories.NewUserRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	interviewRepo := repositories.NewInterviewRepository(db)
	ai := &stubAI{reply: "Tell me about yourself."}

	worker := services.NewScoringWorker(services.NewDocumentScorer(docRepo, ai), log, nil, 1, 10)
	worker.Start(context.Background())
	t.Cleanup(worker.Stop)

	authService := services.NewAuthService(userRepo, auth.NewTokenManager("test-secret", time.Hour), log)

	var (
		google services.GoogleOAuthService
		states services.OAuthStateStore
	)
	if withGoogle {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		states = services.NewRedisStateStore(client, time.Minute)
		google = &stubGoogle{email: "grace@example.com"}
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	RegisterRoutes(app.Group("/api"), Handlers{
		Auth:      NewAuthHandler(authService, google, states, log),
		Documents: NewDocumentHandler(services.NewDocumentService(docRepo, worker, log)),
		Interview: NewInterviewHandler(services.NewInterviewService(interviewRepo, ai, log)),
	}, authService)

	return &testApp{app: app, auth: authService, ai: ai, states: states}
}

func (a *testApp) token(t *testing.T, email string) string {
	t.Helper()
	resp, err := a.auth.Register(context.Background(), email, "secret1")
	require.NoError(t, err)
	return resp.Token
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (int, []byte) {
	t.Helper()

	resp := a.request(t, method, path, token, body)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

var errBoom = fmt.Errorf("%w: boom", apperrors.ErrExternalService)
