package repositories

import (
	"context"
	"golang-civic-backend/internal/models"

	"github.com/google/uuid"
)

// UserRepository interface for identity record operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AreaRepository interface for area operations
type AreaRepository interface {
	Create(ctx context.Context, area *models.Area) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Area, error)
	Update(ctx context.Context, area *models.Area) error
	List(ctx context.Context, limit, offset int) ([]models.Area, int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProfileRepository interface for profile operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VendorRepository interface for vendor operations
type VendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetByProfileID(ctx context.Context, profileID uuid.UUID) ([]models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, areaID *uuid.UUID, limit, offset int) ([]models.Vendor, int64, error)
}

// ComplaintRepository interface for complaint operations
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	Update(ctx context.Context, complaint *models.Complaint) error
	// ListVisibleTo applies the complaint read-visibility rule as a query
	// filter: elevated roles see everything, everyone else sees rows they
	// filed or are assigned to. Optional area/status filters on top.
	ListVisibleTo(ctx context.Context, profileID uuid.UUID, elevated bool, areaID *uuid.UUID, status string, limit, offset int) ([]models.Complaint, int64, error)
}

// RatingRepository interface for rating operations. Create, Update and Delete
// run the vendor aggregate recompute inside the same transaction as the
// rating mutation, so readers never observe a rating without its vendor's
// rollup reflecting it.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error)
	GetByVendorAndReviewer(ctx context.Context, vendorID, reviewerID uuid.UUID) (*models.Rating, error)
	// Update recomputes the aggregate for rating.VendorID and, when the
	// rating was re-targeted, for previousVendorID as well.
	Update(ctx context.Context, rating *models.Rating, previousVendorID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Rating, int64, error)
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Rating, int64, error)
}
