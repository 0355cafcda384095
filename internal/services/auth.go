package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/auth"
	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/models"
	"alfredoptarigan/career-coach/internal/repositories"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	UserFromToken(ctx context.Context, token string) (*models.User, error)
	LoginWithGoogle(ctx context.Context, email string) (*models.AuthResponse, error)
}

type authService struct {
	userRepo   repositories.UserRepository
	tokens     *auth.TokenManager
	log        *logger.Logger
	bcryptCost int
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager, log *logger.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		log:        log.With("service", "AuthService"),
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = models.NormalizeEmail(email)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user with this email already exists: %w", apperrors.ErrConflict)
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	user := &models.User{Email: email, Password: &hashed}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Authenticate checks local credentials. Google-only accounts have no
// password and never authenticate this way.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}

func (s *authService) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// LoginWithGoogle finds or creates a password-less account for a verified Google email.
func (s *authService) LoginWithGoogle(ctx context.Context, email string) (*models.AuthResponse, error) {
	email = models.NormalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return s.issue(user)
	}
	if !isNotFound(err) {
		return nil, err
	}

	user = &models.User{Email: email}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent first login
		if errors.Is(err, apperrors.ErrConflict) {
			existing, findErr := s.userRepo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, findErr
			}
			return s.issue(existing)
		}
		return nil, err
	}

	s.log.Info("user registered via google", "user_id", user.ID)
	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &models.AuthResponse{User: models.NewUserResponse(user), Token: token}, nil
}
