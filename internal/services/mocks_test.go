package services_test

import (
	"context"
	"fmt"
	"time"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"

	"github.com/google/uuid"
)

// Hand-written in-memory fakes for the repository interfaces. They return the
// same error taxonomy the postgres implementations do, so service behavior
// under conflicts and missing rows can be exercised without a database.

type mockUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, errs.NotFound("user")
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errs.NotFound("user")
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.users, id)
	return nil
}

type mockAreaRepo struct {
	areas map[uuid.UUID]*models.Area
}

func newMockAreaRepo() *mockAreaRepo {
	return &mockAreaRepo{areas: make(map[uuid.UUID]*models.Area)}
}

func (m *mockAreaRepo) Create(_ context.Context, area *models.Area) error {
	if area.ID == uuid.Nil {
		area.ID = uuid.New()
	}
	m.areas[area.ID] = area
	return nil
}

func (m *mockAreaRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Area, error) {
	area, ok := m.areas[id]
	if !ok {
		return nil, errs.NotFound("area")
	}
	return area, nil
}

func (m *mockAreaRepo) Update(_ context.Context, area *models.Area) error {
	m.areas[area.ID] = area
	return nil
}

func (m *mockAreaRepo) List(_ context.Context, limit, offset int) ([]models.Area, int64, error) {
	var out []models.Area
	for _, area := range m.areas {
		out = append(out, *area)
	}
	return out, int64(len(m.areas)), nil
}

func (m *mockAreaRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.areas[id]
	return ok, nil
}

type mockProfileRepo struct {
	profiles map[uuid.UUID]*models.Profile
	creates  int
	// createErr fails every Create, simulating a storage outage.
	createErr error
	// missNextLookup makes the next GetByUserID report not-found, simulating
	// a lookup that raced a concurrent insert.
	missNextLookup bool
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[uuid.UUID]*models.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.profiles {
		if existing.UserID == profile.UserID {
			return errs.Conflict("profile")
		}
	}
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, errs.NotFound("profile")
	}
	return profile, nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if m.missNextLookup {
		m.missNextLookup = false
		return nil, errs.NotFound("profile")
	}
	for _, profile := range m.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return nil, errs.NotFound("profile")
}

func (m *mockProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.profiles, id)
	return nil
}

type mockVendorRepo struct {
	vendors map[uuid.UUID]*models.Vendor
}

func newMockVendorRepo() *mockVendorRepo {
	return &mockVendorRepo{vendors: make(map[uuid.UUID]*models.Vendor)}
}

func (m *mockVendorRepo) Create(_ context.Context, vendor *models.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	m.vendors[vendor.ID] = vendor
	return nil
}

func (m *mockVendorRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, ok := m.vendors[id]
	if !ok {
		return nil, errs.NotFound("vendor")
	}
	return vendor, nil
}

func (m *mockVendorRepo) GetByProfileID(_ context.Context, profileID uuid.UUID) ([]models.Vendor, error) {
	var out []models.Vendor
	for _, vendor := range m.vendors {
		if vendor.ProfileID == profileID {
			out = append(out, *vendor)
		}
	}
	return out, nil
}

func (m *mockVendorRepo) Update(_ context.Context, vendor *models.Vendor) error {
	m.vendors[vendor.ID] = vendor
	return nil
}

func (m *mockVendorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.vendors, id)
	return nil
}

func (m *mockVendorRepo) Search(_ context.Context, query string, areaID *uuid.UUID, limit, offset int) ([]models.Vendor, int64, error) {
	var out []models.Vendor
	for _, vendor := range m.vendors {
		if areaID != nil && vendor.AreaID != *areaID {
			continue
		}
		out = append(out, *vendor)
	}
	return out, int64(len(out)), nil
}

type mockComplaintRepo struct {
	complaints map[uuid.UUID]*models.Complaint
	profiles   *mockProfileRepo
	updated    *models.Complaint

	lastProfileID uuid.UUID
	lastElevated  bool
}

func newMockComplaintRepo(profiles *mockProfileRepo) *mockComplaintRepo {
	return &mockComplaintRepo{complaints: make(map[uuid.UUID]*models.Complaint), profiles: profiles}
}

func (m *mockComplaintRepo) Create(_ context.Context, complaint *models.Complaint) error {
	if complaint.ID == uuid.Nil {
		complaint.ID = uuid.New()
	}
	m.complaints[complaint.ID] = complaint
	return nil
}

// GetByID populates Complainant and Assignee the way the postgres repository
// preloads them.
func (m *mockComplaintRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Complaint, error) {
	complaint, ok := m.complaints[id]
	if !ok {
		return nil, errs.NotFound("complaint")
	}
	if p, ok := m.profiles.profiles[complaint.ComplainantID]; ok {
		complaint.Complainant = *p
	}
	complaint.Assignee = nil
	if complaint.AssignedTo != nil {
		if p, ok := m.profiles.profiles[*complaint.AssignedTo]; ok {
			complaint.Assignee = p
		}
	}
	return complaint, nil
}

func (m *mockComplaintRepo) Update(_ context.Context, complaint *models.Complaint) error {
	m.complaints[complaint.ID] = complaint
	m.updated = complaint
	return nil
}

func (m *mockComplaintRepo) ListVisibleTo(_ context.Context, profileID uuid.UUID, elevated bool, areaID *uuid.UUID, status string, limit, offset int) ([]models.Complaint, int64, error) {
	m.lastProfileID = profileID
	m.lastElevated = elevated
	var out []models.Complaint
	for _, complaint := range m.complaints {
		if !elevated && complaint.ComplainantID != profileID &&
			(complaint.AssignedTo == nil || *complaint.AssignedTo != profileID) {
			continue
		}
		if areaID != nil && complaint.AreaID != *areaID {
			continue
		}
		if status != "" && complaint.Status != status {
			continue
		}
		out = append(out, *complaint)
	}
	return out, int64(len(out)), nil
}

type mockRatingRepo struct {
	ratings map[uuid.UUID]*models.Rating
	vendors *mockVendorRepo

	lastPreviousVendor uuid.UUID
	updates            int
}

func newMockRatingRepo(vendors *mockVendorRepo) *mockRatingRepo {
	return &mockRatingRepo{ratings: make(map[uuid.UUID]*models.Rating), vendors: vendors}
}

// recompute mirrors what the postgres repository does inside its transaction.
func (m *mockRatingRepo) recompute(vendorID uuid.UUID) {
	vendor, ok := m.vendors.vendors[vendorID]
	if !ok {
		return
	}
	var scores []int
	for _, rating := range m.ratings {
		if rating.VendorID == vendorID {
			scores = append(scores, rating.Rating)
		}
	}
	vendor.TotalRatings, vendor.AverageRating = models.VendorAggregate(scores)
}

func (m *mockRatingRepo) Create(_ context.Context, rating *models.Rating) error {
	for _, existing := range m.ratings {
		if existing.VendorID == rating.VendorID && existing.ReviewerID == rating.ReviewerID {
			return errs.Conflict("rating")
		}
	}
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}
	m.ratings[rating.ID] = rating
	m.recompute(rating.VendorID)
	return nil
}

func (m *mockRatingRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Rating, error) {
	rating, ok := m.ratings[id]
	if !ok {
		return nil, errs.NotFound("rating")
	}
	return rating, nil
}

func (m *mockRatingRepo) GetByVendorAndReviewer(_ context.Context, vendorID, reviewerID uuid.UUID) (*models.Rating, error) {
	for _, rating := range m.ratings {
		if rating.VendorID == vendorID && rating.ReviewerID == reviewerID {
			return rating, nil
		}
	}
	return nil, errs.NotFound("rating")
}

func (m *mockRatingRepo) Update(_ context.Context, rating *models.Rating, previousVendorID uuid.UUID) error {
	m.updates++
	m.lastPreviousVendor = previousVendorID
	m.ratings[rating.ID] = rating
	m.recompute(rating.VendorID)
	if previousVendorID != rating.VendorID {
		m.recompute(previousVendorID)
	}
	return nil
}

func (m *mockRatingRepo) Delete(_ context.Context, id uuid.UUID) error {
	rating, ok := m.ratings[id]
	if !ok {
		return errs.NotFound("rating")
	}
	delete(m.ratings, id)
	m.recompute(rating.VendorID)
	return nil
}

func (m *mockRatingRepo) ListByVendor(_ context.Context, vendorID uuid.UUID, limit, offset int) ([]models.Rating, int64, error) {
	var out []models.Rating
	for _, rating := range m.ratings {
		if rating.VendorID == vendorID {
			out = append(out, *rating)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockRatingRepo) ListByReviewer(_ context.Context, reviewerID uuid.UUID, limit, offset int) ([]models.Rating, int64, error) {
	var out []models.Rating
	for _, rating := range m.ratings {
		if rating.ReviewerID == reviewerID {
			out = append(out, *rating)
		}
	}
	return out, int64(len(out)), nil
}

type mockTokenStore struct {
	values map[string]string
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{values: make(map[string]string)}
}

func (m *mockTokenStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.values[key] = value.(string)
	return nil
}

func (m *mockTokenStore) Get(_ context.Context, key string, dest interface{}) error {
	value, ok := m.values[key]
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	*dest.(*string) = value
	return nil
}

func (m *mockTokenStore) Delete(_ context.Context, key string) error {
	delete(m.values, key)
	return nil
}
