package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/repositories"
	"golang-civic-backend/pkg/cache"

	"github.com/google/uuid"
)

const vendorCacheTTL = 5 * time.Minute

func vendorCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("vendor:%s", id)
}

func vendorSearchCacheKey(query string, areaID *uuid.UUID, limit, offset int) string {
	area := "all"
	if areaID != nil {
		area = areaID.String()
	}
	return fmt.Sprintf("vendors:%s:%s:%d:%d", query, area, limit, offset)
}

// invalidateVendorCache drops the cached detail for one vendor plus every
// cached listing. Called on vendor writes and, because listings embed the
// aggregate rollup, on every rating mutation as well.
func invalidateVendorCache(ctx context.Context, c *cache.RedisCache, vendorID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, vendorCacheKey(vendorID)); err != nil {
		log.Printf("failed to invalidate vendor cache for %s: %v", vendorID, err)
	}
	if err := c.DeletePattern(ctx, "vendors:*"); err != nil {
		log.Printf("failed to invalidate vendor listings cache: %v", err)
	}
}

type VendorService struct {
	vendorRepo  repositories.VendorRepository
	profileRepo repositories.ProfileRepository
	areaRepo    repositories.AreaRepository
	cache       *cache.RedisCache
}

func NewVendorService(vendorRepo repositories.VendorRepository, profileRepo repositories.ProfileRepository, areaRepo repositories.AreaRepository, cache *cache.RedisCache) *VendorService {
	return &VendorService{
		vendorRepo:  vendorRepo,
		profileRepo: profileRepo,
		areaRepo:    areaRepo,
		cache:       cache,
	}
}

type RegisterVendorRequest struct {
	BusinessName        string       `json:"business_name" binding:"required"`
	FoodTypes           []string     `json:"food_types"`
	LocationDescription string       `json:"location_description"`
	AreaID              uuid.UUID    `json:"area_id" binding:"required"`
	LicenseNumber       string       `json:"license_number"`
	OperatingHours      models.JSONB `json:"operating_hours"`
}

type UpdateVendorRequest struct {
	BusinessName        *string      `json:"business_name"`
	FoodTypes           []string     `json:"food_types"`
	LocationDescription *string      `json:"location_description"`
	AreaID              *uuid.UUID   `json:"area_id"`
	LicenseNumber       *string      `json:"license_number"`
	OperatingHours      models.JSONB `json:"operating_hours"`
}

// RegisterVendor creates a business for the caller's profile and promotes the
// profile to the vendor role.
func (s *VendorService) RegisterVendor(ctx context.Context, caller policy.Caller, req *RegisterVendorRequest) (*models.Vendor, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(caller, policy.ActionInsert, policy.TableVendors, policy.Row{OwnerUserID: profile.UserID}); err != nil {
		return nil, err
	}

	exists, err := s.areaRepo.Exists(ctx, req.AreaID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("area")
	}

	vendor := &models.Vendor{
		ProfileID:           profile.ID,
		BusinessName:        req.BusinessName,
		FoodTypes:           models.StringArray(req.FoodTypes),
		LocationDescription: req.LocationDescription,
		AreaID:              req.AreaID,
		LicenseNumber:       req.LicenseNumber,
		OperatingHours:      req.OperatingHours,
	}
	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, err
	}

	// Vendor existence implies the owning profile acts as a vendor.
	if profile.Role == models.RoleConsumer {
		profile.Role = models.RoleVendor
		if err := s.profileRepo.Update(ctx, profile); err != nil {
			log.Printf("failed to promote profile %s to vendor role: %v", profile.ID, err)
		}
	}

	invalidateVendorCache(ctx, s.cache, vendor.ID)
	return vendor, nil
}

// UpdateVendor lets the owning profile's user (or an admin) change business
// details. The derived rating columns are never caller-writable.
func (s *VendorService) UpdateVendor(ctx context.Context, caller policy.Caller, id uuid.UUID, req *UpdateVendorRequest) (*models.Vendor, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.profileRepo.GetByID(ctx, vendor.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.TableVendors, policy.Row{OwnerUserID: owner.UserID}); err != nil {
		return nil, err
	}

	if req.BusinessName != nil {
		if *req.BusinessName == "" {
			return nil, errs.Validation("business_name", "must not be empty")
		}
		vendor.BusinessName = *req.BusinessName
	}
	if req.FoodTypes != nil {
		vendor.FoodTypes = models.StringArray(req.FoodTypes)
	}
	if req.LocationDescription != nil {
		vendor.LocationDescription = *req.LocationDescription
	}
	if req.AreaID != nil {
		exists, err := s.areaRepo.Exists(ctx, *req.AreaID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, errs.NotFound("area")
		}
		vendor.AreaID = *req.AreaID
	}
	if req.LicenseNumber != nil {
		vendor.LicenseNumber = *req.LicenseNumber
	}
	if req.OperatingHours != nil {
		vendor.OperatingHours = req.OperatingHours
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, err
	}

	invalidateVendorCache(ctx, s.cache, vendor.ID)
	return vendor, nil
}

// GetVendor is a public read-through-cache lookup.
func (s *VendorService) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if s.cache != nil {
		var cached models.Vendor
		if err := s.cache.Get(ctx, vendorCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	vendor, err := s.vendorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, vendorCacheKey(id), vendor, vendorCacheTTL); err != nil {
			log.Printf("failed to cache vendor %s: %v", id, err)
		}
	}
	return vendor, nil
}

type VendorListing struct {
	Vendors []models.Vendor `json:"vendors"`
	Total   int64           `json:"total"`
}

// SearchVendors lists vendors publicly, filtered by area and/or a search
// term, ordered by aggregate rating. Listings are cached briefly.
func (s *VendorService) SearchVendors(ctx context.Context, query string, areaID *uuid.UUID, limit, offset int) (*VendorListing, error) {
	key := vendorSearchCacheKey(query, areaID, limit, offset)
	if s.cache != nil {
		var cached VendorListing
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	vendors, total, err := s.vendorRepo.Search(ctx, query, areaID, limit, offset)
	if err != nil {
		return nil, err
	}

	listing := &VendorListing{Vendors: vendors, Total: total}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, listing, vendorCacheTTL); err != nil {
			log.Printf("failed to cache vendor listing: %v", err)
		}
	}
	return listing, nil
}

// GetOwnVendors lists the businesses registered by the caller's profile.
func (s *VendorService) GetOwnVendors(ctx context.Context, caller policy.Caller) ([]models.Vendor, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.vendorRepo.GetByProfileID(ctx, profile.ID)
}
