package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"go.uber.org/zap"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// UserProfile is the public view of a signed-in user
type UserProfile struct {
	ID    uuid.UUID `json:"id"`
	OrgID uuid.UUID `json:"org_id"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
	Email string    `json:"email"`
}

// LoginOutput represents the login output
type LoginOutput struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      UserProfile `json:"user"`
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperror.NewBadRequestError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to load user", err)
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.Password) {
		s.logger.Info("login rejected", zap.String("email", email))
		return nil, apperror.ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtManager.GenerateAccessToken(user.ID, user.OrgID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      profileOf(user),
	}, nil
}

// Verify checks a bearer token without touching the store
func (s *AuthService) Verify(token string) (*utils.JWTClaims, error) {
	if token == "" {
		return nil, apperror.NewAppError(401, "No token provided")
	}
	claims, err := s.jwtManager.ValidateAccessToken(token)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return claims, nil
}

// GetCurrentUser returns the profile for the user in the token
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewRemoteFailure("Failed to load user", err)
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User profile")
	}
	profile := profileOf(user)
	return &profile, nil
}

// Logout is stateless: tokens expire on their own and the client discards its copy
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) {
	s.logger.Info("user logged out", zap.String("user_id", userID.String()))
}

func profileOf(u *entity.AppUser) UserProfile {
	return UserProfile{
		ID:    u.ID,
		OrgID: u.OrgID,
		Name:  u.Name,
		Role:  string(u.Role),
		Email: u.Email,
	}
}
