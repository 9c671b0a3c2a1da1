package services

import (
	"context"
	"encoding/json"
	"strings"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/repositories"
	"golang-civic-backend/pkg/messaging"

	"github.com/google/uuid"
)

// ProvisioningService guarantees every identity ends up with exactly one
// profile. It runs synchronously at registration and again from the
// identity-event consumer, relying on the unique user_id index to stay
// idempotent under races.
type ProvisioningService struct {
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
}

func NewProvisioningService(profileRepo repositories.ProfileRepository, userRepo repositories.UserRepository) *ProvisioningService {
	return &ProvisioningService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// EnsureProfile returns the identity's profile, creating it with defaults if
// missing: role consumer, the identity's phone, no area, and the given name
// falling back to the email local part.
func (s *ProvisioningService) EnsureProfile(ctx context.Context, user *models.User, fullName string) (*models.Profile, error) {
	existing, err := s.profileRepo.GetByUserID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errs.IsNotFound(err) {
		return nil, err
	}

	if fullName == "" {
		fullName = defaultName(user.Email)
	}

	profile := &models.Profile{
		UserID:   user.ID,
		FullName: fullName,
		Phone:    user.Phone,
		Role:     models.RoleConsumer,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		// A concurrent provisioning attempt won the unique-index race; the
		// surviving row is the profile.
		if errs.IsConflict(err) {
			return s.profileRepo.GetByUserID(ctx, user.ID)
		}
		return nil, err
	}
	return profile, nil
}

// HandleIdentityEvent reconciles a profile from an identity.created message.
// Used as the kafka consumer handler.
func (s *ProvisioningService) HandleIdentityEvent(data []byte) error {
	var event messaging.IdentityEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		// Identity deleted before the event was consumed; nothing to do.
		if errs.IsNotFound(err) {
			return nil
		}
		return err
	}

	_, err = s.EnsureProfile(ctx, user, "")
	return err
}

func defaultName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
