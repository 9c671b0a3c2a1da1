package services

import (
	"context"
	"log"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/repositories"
	"golang-civic-backend/pkg/cache"
	"golang-civic-backend/pkg/messaging"

	"github.com/google/uuid"
)

// RatingService owns rating submissions and keeps the vendor rollup caches
// and event stream in step with the transactional recompute the repository
// performs.
type RatingService struct {
	ratingRepo  repositories.RatingRepository
	vendorRepo  repositories.VendorRepository
	profileRepo repositories.ProfileRepository
	cache       *cache.RedisCache
	producer    *messaging.KafkaProducer
	brokers     []string
}

func NewRatingService(ratingRepo repositories.RatingRepository, vendorRepo repositories.VendorRepository, profileRepo repositories.ProfileRepository, cache *cache.RedisCache, producer *messaging.KafkaProducer, brokers []string) *RatingService {
	return &RatingService{
		ratingRepo:  ratingRepo,
		vendorRepo:  vendorRepo,
		profileRepo: profileRepo,
		cache:       cache,
		producer:    producer,
		brokers:     brokers,
	}
}

type SubmitRatingRequest struct {
	VendorID      uuid.UUID `json:"vendor_id" binding:"required"`
	Rating        int       `json:"rating" binding:"required"`
	FoodQuality   *int      `json:"food_quality"`
	PriceFairness *int      `json:"price_fairness"`
	Hygiene       *int      `json:"hygiene"`
	Comment       string    `json:"comment"`
}

type UpdateRatingRequest struct {
	Rating        *int       `json:"rating"`
	FoodQuality   *int       `json:"food_quality"`
	PriceFairness *int       `json:"price_fairness"`
	Hygiene       *int       `json:"hygiene"`
	Comment       *string    `json:"comment"`
	VendorID      *uuid.UUID `json:"vendor_id"`
}

func validateScore(field string, score int) error {
	if score < 1 || score > 5 {
		return errs.Validation(field, "must be between 1 and 5")
	}
	return nil
}

func validateOptionalScore(field string, score *int) error {
	if score == nil {
		return nil
	}
	return validateScore(field, *score)
}

// SubmitRating inserts the caller's rating for a vendor. A second submission
// for the same vendor collides with the unique index and surfaces as a
// conflict so the client can switch to editing the existing rating.
func (s *RatingService) SubmitRating(ctx context.Context, caller policy.Caller, req *SubmitRatingRequest) (*models.Rating, error) {
	if err := validateScore("rating", req.Rating); err != nil {
		return nil, err
	}
	if err := validateOptionalScore("food_quality", req.FoodQuality); err != nil {
		return nil, err
	}
	if err := validateOptionalScore("price_fairness", req.PriceFairness); err != nil {
		return nil, err
	}
	if err := validateOptionalScore("hygiene", req.Hygiene); err != nil {
		return nil, err
	}

	if _, err := s.vendorRepo.GetByID(ctx, req.VendorID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionInsert, policy.TableRatings, policy.Row{OwnerUserID: profile.UserID}); err != nil {
		return nil, err
	}

	rating := &models.Rating{
		VendorID:      req.VendorID,
		ReviewerID:    profile.ID,
		Rating:        req.Rating,
		FoodQuality:   req.FoodQuality,
		PriceFairness: req.PriceFairness,
		Hygiene:       req.Hygiene,
		Comment:       req.Comment,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "rating.submitted", rating.VendorID)
	return rating, nil
}

// UpdateRating edits the caller's existing rating in place. Re-targeting to a
// different vendor is treated as delete-then-insert for aggregate purposes;
// both vendors' rollups are recomputed in the same transaction.
func (s *RatingService) UpdateRating(ctx context.Context, caller policy.Caller, id uuid.UUID, req *UpdateRatingRequest) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reviewer, err := s.profileRepo.GetByID(ctx, rating.ReviewerID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.TableRatings, policy.Row{OwnerUserID: reviewer.UserID}); err != nil {
		return nil, err
	}

	if req.Rating != nil {
		if err := validateScore("rating", *req.Rating); err != nil {
			return nil, err
		}
		rating.Rating = *req.Rating
	}
	if req.FoodQuality != nil {
		if err := validateScore("food_quality", *req.FoodQuality); err != nil {
			return nil, err
		}
		rating.FoodQuality = req.FoodQuality
	}
	if req.PriceFairness != nil {
		if err := validateScore("price_fairness", *req.PriceFairness); err != nil {
			return nil, err
		}
		rating.PriceFairness = req.PriceFairness
	}
	if req.Hygiene != nil {
		if err := validateScore("hygiene", *req.Hygiene); err != nil {
			return nil, err
		}
		rating.Hygiene = req.Hygiene
	}
	if req.Comment != nil {
		rating.Comment = *req.Comment
	}

	previousVendorID := rating.VendorID
	if req.VendorID != nil && *req.VendorID != rating.VendorID {
		if _, err := s.vendorRepo.GetByID(ctx, *req.VendorID); err != nil {
			return nil, err
		}
		rating.VendorID = *req.VendorID
	}

	if err := s.ratingRepo.Update(ctx, rating, previousVendorID); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, "rating.updated", rating.VendorID)
	if previousVendorID != rating.VendorID {
		s.afterMutation(ctx, "rating.updated", previousVendorID)
	}
	return rating, nil
}

// DeleteRating removes the caller's rating; the vendor aggregate shrinks in
// the same transaction.
func (s *RatingService) DeleteRating(ctx context.Context, caller policy.Caller, id uuid.UUID) error {
	rating, err := s.ratingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	reviewer, err := s.profileRepo.GetByID(ctx, rating.ReviewerID)
	if err != nil {
		return err
	}
	if err := policy.Authorize(caller, policy.ActionDelete, policy.TableRatings, policy.Row{OwnerUserID: reviewer.UserID}); err != nil {
		return err
	}

	if err := s.ratingRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.afterMutation(ctx, "rating.deleted", rating.VendorID)
	return nil
}

// ListVendorRatings is a public read. The vendor reference is checked first
// so an unknown vendor reports not-found instead of an empty listing.
func (s *RatingService) ListVendorRatings(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Rating, int64, error) {
	if _, err := s.vendorRepo.GetByID(ctx, vendorID); err != nil {
		return nil, 0, err
	}
	return s.ratingRepo.ListByVendor(ctx, vendorID, limit, offset)
}

// ListOwnRatings returns every rating the caller has submitted.
func (s *RatingService) ListOwnRatings(ctx context.Context, caller policy.Caller, limit, offset int) ([]models.Rating, int64, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, 0, err
	}
	return s.ratingRepo.ListByReviewer(ctx, profile.ID, limit, offset)
}

// GetOwnRating returns the caller's rating for a vendor, if any.
func (s *RatingService) GetOwnRating(ctx context.Context, caller policy.Caller, vendorID uuid.UUID) (*models.Rating, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.ratingRepo.GetByVendorAndReviewer(ctx, vendorID, profile.ID)
}

// afterMutation invalidates the vendor caches and publishes the fresh
// aggregate. Both are best-effort; the transactional recompute has already
// committed.
func (s *RatingService) afterMutation(ctx context.Context, eventType string, vendorID uuid.UUID) {
	invalidateVendorCache(ctx, s.cache, vendorID)

	if s.producer == nil {
		return
	}
	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		log.Printf("failed to load vendor %s for rating event: %v", vendorID, err)
		return
	}
	event := messaging.RatingEvent{
		Type:          eventType,
		VendorID:      vendorID.String(),
		TotalRatings:  vendor.TotalRatings,
		AverageRating: vendor.AverageRating,
	}
	if err := s.producer.SendMessage(messaging.TopicRatingEvents, s.brokers, vendorID.String(), event); err != nil {
		log.Printf("failed to publish rating event for vendor %s: %v", vendorID, err)
	}
}
