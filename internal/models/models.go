package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, j)
}

// StringArray type for PostgreSQL arrays
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, s)
}

// Profile roles
const (
	RoleConsumer  = "consumer"
	RoleVendor    = "vendor"
	RoleAuthority = "authority"
	RoleAdmin     = "admin"
)

// Complaint categories
const (
	CategoryFoodQuality   = "food_quality"
	CategoryPricing       = "pricing"
	CategoryHygiene       = "hygiene"
	CategoryLocationIssue = "location_issue"
	CategoryLicensing     = "licensing"
	CategoryOther         = "other"
)

// Complaint statuses
const (
	StatusPending       = "pending"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
	StatusDismissed     = "dismissed"
)

// Complaint priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidCategory reports whether c is one of the fixed complaint categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryFoodQuality, CategoryPricing, CategoryHygiene, CategoryLocationIssue, CategoryLicensing, CategoryOther:
		return true
	}
	return false
}

// ValidStatus reports whether s is one of the fixed complaint statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// TerminalStatus reports whether s closes a complaint.
func TerminalStatus(s string) bool {
	return s == StatusResolved || s == StatusDismissed
}

// ValidPriority reports whether p is one of the fixed priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidRole reports whether r is one of the fixed profile roles.
func ValidRole(r string) bool {
	switch r {
	case RoleConsumer, RoleVendor, RoleAuthority, RoleAdmin:
		return true
	}
	return false
}

// User model - the authenticated identity record. Display and business data
// never reference users directly; ownership always joins through Profile.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"not null" json:"phone"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Status       string    `gorm:"default:active" json:"status"` // active, inactive, suspended
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Area model - long-lived geographic unit scoping vendors and complaints.
// Mutated only by admins; seed data otherwise.
type Area struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	District   string    `gorm:"not null" json:"district"`
	State      string    `gorm:"not null" json:"state"`
	PostalCode string    `json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile model - one per identity, enforced by the unique user_id index.
// Created automatically at registration with role "consumer".
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	FullName  string     `gorm:"not null" json:"full_name"`
	Phone     string     `json:"phone"`
	AreaID    *uuid.UUID `gorm:"type:uuid" json:"area_id"`
	Area      *Area      `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Role      string     `gorm:"default:consumer;check:role IN ('consumer','vendor','authority','admin')" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Vendor model - a registered street-food business owned by a Profile.
// AverageRating and TotalRatings are derived; they are recomputed inside the
// same transaction as every rating mutation and must never drift from the
// ratings table.
type Vendor struct {
	ID                  uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID           uuid.UUID   `gorm:"type:uuid;not null" json:"profile_id"`
	Profile             Profile     `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	BusinessName        string      `gorm:"not null" json:"business_name"`
	FoodTypes           StringArray `gorm:"type:jsonb" json:"food_types"`
	LocationDescription string      `json:"location_description"`
	AreaID              uuid.UUID   `gorm:"type:uuid;not null" json:"area_id"`
	Area                Area        `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	LicenseNumber       string      `json:"license_number"`
	OperatingHours      JSONB       `gorm:"type:jsonb" json:"operating_hours"`
	AverageRating       float64     `gorm:"default:0" json:"average_rating"`
	TotalRatings        int         `gorm:"default:0" json:"total_ratings"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Complaint model - an issue report filed by a Profile, scoped to an Area and
// optionally targeting a Vendor. vendor_id nulls out if the vendor is removed
// since the complaint remains valid on its own.
type Complaint struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ComplainantID   uuid.UUID  `gorm:"type:uuid;not null" json:"complainant_id"`
	Complainant     Profile    `gorm:"foreignKey:ComplainantID;constraint:OnDelete:CASCADE" json:"complainant,omitempty"`
	VendorID        *uuid.UUID `gorm:"type:uuid" json:"vendor_id"`
	Vendor          *Vendor    `gorm:"foreignKey:VendorID;constraint:OnDelete:SET NULL" json:"vendor,omitempty"`
	AreaID          uuid.UUID  `gorm:"type:uuid;not null" json:"area_id"`
	Area            Area       `gorm:"foreignKey:AreaID" json:"area,omitempty"`
	Category        string     `gorm:"not null;check:category IN ('food_quality','pricing','hygiene','location_issue','licensing','other')" json:"category"`
	Description     string     `gorm:"not null" json:"description"`
	Status          string     `gorm:"default:pending;check:status IN ('pending','investigating','resolved','dismissed')" json:"status"`
	Priority        string     `gorm:"default:medium;check:priority IN ('low','medium','high')" json:"priority"`
	AssignedTo      *uuid.UUID `gorm:"type:uuid" json:"assigned_to"`
	Assignee        *Profile   `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	ResolutionNotes *string    `json:"resolution_notes"`
	ResolvedAt      *time.Time `json:"resolved_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Rating model - one reviewer scores one vendor exactly once; a second
// submission must update the existing row. The composite unique index makes a
// concurrent duplicate fail at the storage engine.
type Rating struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_vendor_reviewer" json:"vendor_id"`
	Vendor        Vendor    `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE" json:"vendor,omitempty"`
	ReviewerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_vendor_reviewer" json:"reviewer_id"`
	Reviewer      Profile   `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE" json:"reviewer,omitempty"`
	Rating        int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	FoodQuality   *int      `gorm:"check:food_quality IS NULL OR (food_quality >= 1 AND food_quality <= 5)" json:"food_quality"`
	PriceFairness *int      `gorm:"check:price_fairness IS NULL OR (price_fairness >= 1 AND price_fairness <= 5)" json:"price_fairness"`
	Hygiene       *int      `gorm:"check:hygiene IS NULL OR (hygiene >= 1 AND hygiene <= 5)" json:"hygiene"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VendorAggregate computes the derived rollup for a vendor from the overall
// scores of its current rating rows: the count and the arithmetic mean
// rounded to one decimal place. An empty set yields 0 and 0.0, never NaN.
func VendorAggregate(scores []int) (total int, average float64) {
	total = len(scores)
	if total == 0 {
		return 0, 0.0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	average = math.Round(float64(sum)/float64(total)*10) / 10
	return total, average
}
