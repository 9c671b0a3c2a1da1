package repositories

import (
	"context"
	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("user")
	}
	return errors.Wrap(err, "create user")
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(user).Error, "update user")
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&models.User{}, id).Error, "delete user")
}

// Area Repository
type areaRepository struct {
	db *gorm.DB
}

func NewAreaRepository(db *gorm.DB) AreaRepository {
	return &areaRepository{db: db}
}

func (r *areaRepository) Create(ctx context.Context, area *models.Area) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(area).Error, "create area")
}

func (r *areaRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Area, error) {
	var area models.Area
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&area).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("area")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get area")
	}
	return &area, nil
}

func (r *areaRepository) Update(ctx context.Context, area *models.Area) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(area).Error, "update area")
}

func (r *areaRepository) List(ctx context.Context, limit, offset int) ([]models.Area, int64, error) {
	var areas []models.Area
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Area{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count areas")
	}
	if err := query.Order("state, district, name").
		Limit(limit).Offset(offset).Find(&areas).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list areas")
	}
	return areas, total, nil
}

func (r *areaRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Area{}).Where("id = ?", id).Count(&count).Error
	return count > 0, errors.Wrap(err, "check area")
}

// Profile Repository
type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Create(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("profile")
	}
	return errors.Wrap(err, "create profile")
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("Area").Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("profile")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get profile")
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("profile")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get profile by user")
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *models.Profile) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(profile).Error, "update profile")
}

func (r *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&models.Profile{}, id).Error, "delete profile")
}

// Vendor Repository
type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *models.Vendor) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(vendor).Error, "create vendor")
}

func (r *vendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).Preload("Profile").Preload("Area").Where("id = ?", id).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("vendor")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get vendor")
	}
	return &vendor, nil
}

func (r *vendorRepository) GetByProfileID(ctx context.Context, profileID uuid.UUID) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).Find(&vendors).Error
	return vendors, errors.Wrap(err, "get vendors by profile")
}

func (r *vendorRepository) Update(ctx context.Context, vendor *models.Vendor) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(vendor).Error, "update vendor")
}

func (r *vendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return errors.Wrap(r.db.WithContext(ctx).Delete(&models.Vendor{}, id).Error, "delete vendor")
}

func (r *vendorRepository) Search(ctx context.Context, query string, areaID *uuid.UUID, limit, offset int) ([]models.Vendor, int64, error) {
	var vendors []models.Vendor
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Vendor{})
	if query != "" {
		q = q.Where("business_name ILIKE ? OR location_description ILIKE ?", "%"+query+"%", "%"+query+"%")
	}
	if areaID != nil {
		q = q.Where("area_id = ?", *areaID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count vendors")
	}
	if err := q.Preload("Area").
		Order("average_rating DESC, total_ratings DESC").
		Limit(limit).Offset(offset).Find(&vendors).Error; err != nil {
		return nil, 0, errors.Wrap(err, "search vendors")
	}
	return vendors, total, nil
}

// Complaint Repository
type complaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(complaint).Error, "create complaint")
}

func (r *complaintRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).
		Preload("Complainant").
		Preload("Assignee").
		Preload("Area").
		Where("id = ?", id).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("complaint")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get complaint")
	}
	return &complaint, nil
}

func (r *complaintRepository) Update(ctx context.Context, complaint *models.Complaint) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(complaint).Error, "update complaint")
}

func (r *complaintRepository) ListVisibleTo(ctx context.Context, profileID uuid.UUID, elevated bool, areaID *uuid.UUID, status string, limit, offset int) ([]models.Complaint, int64, error) {
	var complaints []models.Complaint
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Complaint{})
	if !elevated {
		query = query.Where("complainant_id = ? OR assigned_to = ?", profileID, profileID)
	}
	if areaID != nil {
		query = query.Where("area_id = ?", *areaID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count complaints")
	}
	if err := query.Preload("Area").
		Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&complaints).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list complaints")
	}
	return complaints, total, nil
}

// Rating Repository. Every mutation runs inside one transaction together with
// the full recompute of the affected vendor aggregate, never an incremental
// adjustment of a running sum.
type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("rating")
			}
			return errors.Wrap(err, "create rating")
		}
		return recomputeVendorAggregate(tx, rating.VendorID)
	})
}

func (r *ratingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("rating")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get rating")
	}
	return &rating, nil
}

func (r *ratingRepository) GetByVendorAndReviewer(ctx context.Context, vendorID, reviewerID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND reviewer_id = ?", vendorID, reviewerID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("rating")
	}
	if err != nil {
		return nil, errors.Wrap(err, "get rating by vendor and reviewer")
	}
	return &rating, nil
}

func (r *ratingRepository) Update(ctx context.Context, rating *models.Rating, previousVendorID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rating).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errs.Conflict("rating")
			}
			return errors.Wrap(err, "update rating")
		}
		if err := recomputeVendorAggregate(tx, rating.VendorID); err != nil {
			return err
		}
		// Re-targeting acts as delete-then-insert for aggregate purposes:
		// the old vendor's rollup must shrink in the same transaction.
		if previousVendorID != rating.VendorID {
			return recomputeVendorAggregate(tx, previousVendorID)
		}
		return nil
	})
}

func (r *ratingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The pre-delete row supplies the vendor to recompute.
		var rating models.Rating
		if err := tx.Where("id = ?", id).First(&rating).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("rating")
			}
			return errors.Wrap(err, "load rating for delete")
		}
		if err := tx.Delete(&models.Rating{}, id).Error; err != nil {
			return errors.Wrap(err, "delete rating")
		}
		return recomputeVendorAggregate(tx, rating.VendorID)
	})
}

func (r *ratingRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Rating, int64, error) {
	var ratings []models.Rating
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Rating{}).Where("vendor_id = ?", vendorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count ratings")
	}
	if err := query.Preload("Reviewer").
		Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&ratings).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list ratings")
	}
	return ratings, total, nil
}

func (r *ratingRepository) ListByReviewer(ctx context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Rating, int64, error) {
	var ratings []models.Rating
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Rating{}).Where("reviewer_id = ?", reviewerID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count ratings")
	}
	if err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&ratings).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list ratings by reviewer")
	}
	return ratings, total, nil
}

// recomputeVendorAggregate requeries the full current rating set for the
// vendor and overwrites the derived columns. Always a full recompute, never an
// incremental adjustment of the stored values.
func recomputeVendorAggregate(tx *gorm.DB, vendorID uuid.UUID) error {
	var scores []int
	if err := tx.Model(&models.Rating{}).
		Where("vendor_id = ?", vendorID).
		Pluck("rating", &scores).Error; err != nil {
		return errors.Wrap(err, "load rating scores")
	}

	total, average := models.VendorAggregate(scores)
	err := tx.Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		Updates(map[string]interface{}{
			"total_ratings":  total,
			"average_rating": average,
		}).Error
	return errors.Wrap(err, "update vendor aggregate")
}
