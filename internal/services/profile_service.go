package services

import (
	"context"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/repositories"

	"github.com/google/uuid"
)

type ProfileService struct {
	profileRepo repositories.ProfileRepository
	areaRepo    repositories.AreaRepository
}

func NewProfileService(profileRepo repositories.ProfileRepository, areaRepo repositories.AreaRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		areaRepo:    areaRepo,
	}
}

type UpdateProfileRequest struct {
	FullName *string    `json:"full_name"`
	Phone    *string    `json:"phone"`
	AreaID   *uuid.UUID `json:"area_id"`
}

// GetProfile is a public read.
func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// GetOwnProfile returns the caller's profile.
func (s *ProfileService) GetOwnProfile(ctx context.Context, caller policy.Caller) (*models.Profile, error) {
	return s.profileRepo.GetByUserID(ctx, caller.UserID)
}

// UpdateProfile lets the owner (or an admin) change display fields. The role
// is never caller-writable here; it only changes through vendor registration
// or admin tooling.
func (s *ProfileService) UpdateProfile(ctx context.Context, caller policy.Caller, id uuid.UUID, req *UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(caller, policy.ActionUpdate, policy.TableProfiles, policy.Row{OwnerUserID: profile.UserID}); err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if *req.FullName == "" {
			return nil, errs.Validation("full_name", "must not be empty")
		}
		profile.FullName = *req.FullName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.AreaID != nil {
		exists, err := s.areaRepo.Exists(ctx, *req.AreaID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errs.NotFound("area")
		}
		profile.AreaID = req.AreaID
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
