package services

import (
	"context"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/repositories"

	"github.com/google/uuid"
)

type AreaService struct {
	areaRepo repositories.AreaRepository
}

func NewAreaService(areaRepo repositories.AreaRepository) *AreaService {
	return &AreaService{areaRepo: areaRepo}
}

type AreaRequest struct {
	Name       string `json:"name" binding:"required"`
	District   string `json:"district" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code"`
}

func (s *AreaService) GetArea(ctx context.Context, id uuid.UUID) (*models.Area, error) {
	return s.areaRepo.GetByID(ctx, id)
}

func (s *AreaService) ListAreas(ctx context.Context, limit, offset int) ([]models.Area, int64, error) {
	return s.areaRepo.List(ctx, limit, offset)
}

// CreateArea is admin-only; areas are otherwise seed data.
func (s *AreaService) CreateArea(ctx context.Context, caller policy.Caller, req *AreaRequest) (*models.Area, error) {
	if err := policy.Authorize(caller, policy.ActionInsert, policy.TableAreas, policy.Row{}); err != nil {
		return nil, err
	}

	area := &models.Area{
		Name:       req.Name,
		District:   req.District,
		State:      req.State,
		PostalCode: req.PostalCode,
	}
	if err := s.areaRepo.Create(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

func (s *AreaService) UpdateArea(ctx context.Context, caller policy.Caller, id uuid.UUID, req *AreaRequest) (*models.Area, error) {
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.TableAreas, policy.Row{}); err != nil {
		return nil, err
	}

	area, err := s.areaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, errs.Validation("name", "must not be empty")
	}

	area.Name = req.Name
	area.District = req.District
	area.State = req.State
	area.PostalCode = req.PostalCode
	if err := s.areaRepo.Update(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}
