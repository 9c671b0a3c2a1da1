package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/repositories"
	"golang-civic-backend/pkg/auth"
	"golang-civic-backend/pkg/messaging"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on login failure; the handler maps it to
// 401 without distinguishing unknown email from wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenStore persists refresh tokens between logins. The redis cache
// satisfies it.
type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// AuthService is the identity boundary: it owns the users table, issues
// tokens, and triggers profile provisioning on registration.
type AuthService struct {
	userRepo    repositories.UserRepository
	provisioner *ProvisioningService
	jwtManager  *auth.JWTManager
	tokens      TokenStore
	producer    *messaging.KafkaProducer
	brokers     []string
}

func NewAuthService(userRepo repositories.UserRepository, provisioner *ProvisioningService, jwtManager *auth.JWTManager, tokens TokenStore, producer *messaging.KafkaProducer, brokers []string) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		provisioner: provisioner,
		jwtManager:  jwtManager,
		tokens:      tokens,
		producer:    producer,
		brokers:     brokers,
	}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         models.User     `json:"user"`
	Profile      *models.Profile `json:"profile,omitempty"`
}

// Register creates the identity record, provisions its profile and emits an
// identity event. Profile provisioning is best-effort here: a failure is
// logged and reconciled later by the identity-event consumer instead of
// aborting the registration.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errs.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hashedPassword),
		Status:       "active",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile, err := s.provisioner.EnsureProfile(ctx, user, req.FullName)
	if err != nil {
		log.Printf("profile provisioning failed for user %s: %v", user.ID, err)
	}

	if s.producer != nil {
		event := messaging.IdentityEvent{
			Type:   "identity.created",
			UserID: user.ID.String(),
			Email:  user.Email,
			Phone:  user.Phone,
		}
		if err := s.producer.SendMessage(messaging.TopicIdentityCreated, s.brokers, user.ID.String(), event); err != nil {
			log.Printf("failed to publish identity event for user %s: %v", user.ID, err)
		}
	}

	role := models.RoleConsumer
	if profile != nil {
		role = profile.Role
	}
	return s.issueTokens(ctx, user, profile, role)
}

// Login authenticates against the identity record.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// The profile may be missing if provisioning failed and the consumer has
	// not reconciled yet; a consumer-role token still lets the owner in.
	profile, err := s.provisioner.EnsureProfile(ctx, user, "")
	if err != nil {
		log.Printf("profile lookup failed for user %s: %v", user.ID, err)
	}

	role := models.RoleConsumer
	if profile != nil {
		role = profile.Role
	}
	return s.issueTokens(ctx, user, profile, role)
}

// Refresh validates the refresh token against the stored copy and issues a
// new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtManager.ValidateToken(refreshToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	stored, err := s.getStoredRefreshToken(ctx, claims.UserID)
	if err != nil || stored != refreshToken {
		return "", ErrInvalidCredentials
	}

	return s.jwtManager.RefreshAccessToken(refreshToken)
}

// Logout invalidates the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.invalidateRefreshToken(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, profile *models.Profile, role string) (*AuthResponse, error) {
	pair, err := s.jwtManager.GenerateTokenPair(user.ID.String(), role, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID.String(), pair.RefreshToken, 30); err != nil {
		log.Printf("failed to store refresh token for user %s: %v", user.ID, err)
	}

	return &AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    3600,
		User:         *user,
		Profile:      profile,
	}, nil
}

func (s *AuthService) storeRefreshToken(ctx context.Context, userID, refreshToken string, expiryDays int) error {
	key := fmt.Sprintf("refresh_token:%s", userID)
	expiry := time.Hour * 24 * time.Duration(expiryDays)
	return s.tokens.Set(ctx, key, refreshToken, expiry)
}

func (s *AuthService) getStoredRefreshToken(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf("refresh_token:%s", userID)
	var token string
	err := s.tokens.Get(ctx, key, &token)
	return token, err
}

func (s *AuthService) invalidateRefreshToken(ctx context.Context, userID string) error {
	key := fmt.Sprintf("refresh_token:%s", userID)
	return s.tokens.Delete(ctx, key)
}
