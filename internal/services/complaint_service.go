package services

import (
	"context"
	"log"
	"time"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/repositories"
	"golang-civic-backend/pkg/messaging"

	"github.com/google/uuid"
)

type ComplaintService struct {
	complaintRepo repositories.ComplaintRepository
	profileRepo   repositories.ProfileRepository
	areaRepo      repositories.AreaRepository
	vendorRepo    repositories.VendorRepository
	producer      *messaging.KafkaProducer
	brokers       []string
}

func NewComplaintService(complaintRepo repositories.ComplaintRepository, profileRepo repositories.ProfileRepository, areaRepo repositories.AreaRepository, vendorRepo repositories.VendorRepository, producer *messaging.KafkaProducer, brokers []string) *ComplaintService {
	return &ComplaintService{
		complaintRepo: complaintRepo,
		profileRepo:   profileRepo,
		areaRepo:      areaRepo,
		vendorRepo:    vendorRepo,
		producer:      producer,
		brokers:       brokers,
	}
}

type FileComplaintRequest struct {
	VendorID    *uuid.UUID `json:"vendor_id"`
	AreaID      uuid.UUID  `json:"area_id" binding:"required"`
	Category    string     `json:"category" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Priority    string     `json:"priority"`
}

type UpdateComplaintStatusRequest struct {
	Status          string  `json:"status" binding:"required"`
	ResolutionNotes *string `json:"resolution_notes"`
}

type ComplaintFilters struct {
	AreaID *uuid.UUID
	Status string
	Limit  int
	Offset int
}

// allowedTransitions encodes the complaint lifecycle: pending →
// investigating → resolved|dismissed, with reopen back to investigating.
var allowedTransitions = map[string][]string{
	models.StatusPending:       {models.StatusInvestigating, models.StatusResolved, models.StatusDismissed},
	models.StatusInvestigating: {models.StatusResolved, models.StatusDismissed},
	models.StatusResolved:      {models.StatusInvestigating},
	models.StatusDismissed:     {models.StatusInvestigating},
}

func transitionAllowed(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// FileComplaint creates a complaint for the caller's profile. The vendor
// reference is optional; the area is mandatory and must exist.
func (s *ComplaintService) FileComplaint(ctx context.Context, caller policy.Caller, req *FileComplaintRequest) (*models.Complaint, error) {
	if !models.ValidCategory(req.Category) {
		return nil, errs.Validation("category", "unknown complaint category")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return nil, errs.Validation("priority", "unknown priority")
	}

	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionInsert, policy.TableComplaints, policy.Row{OwnerUserID: profile.UserID}); err != nil {
		return nil, err
	}

	exists, err := s.areaRepo.Exists(ctx, req.AreaID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("area")
	}
	if req.VendorID != nil {
		if _, err := s.vendorRepo.GetByID(ctx, *req.VendorID); err != nil {
			return nil, err
		}
	}

	complaint := &models.Complaint{
		ComplainantID: profile.ID,
		VendorID:      req.VendorID,
		AreaID:        req.AreaID,
		Category:      req.Category,
		Description:   req.Description,
		Status:        models.StatusPending,
		Priority:      priority,
	}
	if err := s.complaintRepo.Create(ctx, complaint); err != nil {
		return nil, err
	}

	s.publishEvent("complaint.filed", complaint)
	return complaint, nil
}

// GetComplaint applies the restricted read rule: complainant, assignee, or an
// elevated role.
func (s *ComplaintService) GetComplaint(ctx context.Context, caller policy.Caller, id uuid.UUID) (*models.Complaint, error) {
	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionRead, policy.TableComplaints, s.ownership(complaint)); err != nil {
		return nil, err
	}
	return complaint, nil
}

// ListComplaints mirrors the read rule as a query filter.
func (s *ComplaintService) ListComplaints(ctx context.Context, caller policy.Caller, filters ComplaintFilters) ([]models.Complaint, int64, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, 0, err
	}
	elevated := caller.Role == models.RoleAuthority || caller.Role == models.RoleAdmin
	return s.complaintRepo.ListVisibleTo(ctx, profile.ID, elevated, filters.AreaID, filters.Status, filters.Limit, filters.Offset)
}

// UpdateStatus moves a complaint through its lifecycle. resolved_at is set
// exactly when the status is terminal and cleared on reopen, together with
// the resolution notes.
func (s *ComplaintService) UpdateStatus(ctx context.Context, caller policy.Caller, id uuid.UUID, req *UpdateComplaintStatusRequest) (*models.Complaint, error) {
	if !models.ValidStatus(req.Status) {
		return nil, errs.Validation("status", "unknown status")
	}

	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(caller, policy.ActionUpdate, policy.TableComplaints, s.ownership(complaint)); err != nil {
		return nil, err
	}

	if req.Status != complaint.Status {
		if !transitionAllowed(complaint.Status, req.Status) {
			return nil, errs.Validation("status", "transition from "+complaint.Status+" to "+req.Status+" not allowed")
		}
		complaint.Status = req.Status
		if models.TerminalStatus(req.Status) {
			now := time.Now()
			complaint.ResolvedAt = &now
		} else {
			complaint.ResolvedAt = nil
			complaint.ResolutionNotes = nil
		}
	}
	if req.ResolutionNotes != nil && models.TerminalStatus(complaint.Status) {
		complaint.ResolutionNotes = req.ResolutionNotes
	}

	if err := s.complaintRepo.Update(ctx, complaint); err != nil {
		return nil, err
	}

	s.publishEvent("complaint.status_changed", complaint)
	return complaint, nil
}

// Assign hands a complaint to an authority profile. Elevated roles only.
func (s *ComplaintService) Assign(ctx context.Context, caller policy.Caller, id, assigneeID uuid.UUID) (*models.Complaint, error) {
	if err := policy.Authorize(caller, policy.ActionAssign, policy.TableComplaints, policy.Row{}); err != nil {
		return nil, err
	}

	complaint, err := s.complaintRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	assignee, err := s.profileRepo.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	if assignee.Role != models.RoleAuthority && assignee.Role != models.RoleAdmin {
		return nil, errs.Validation("assigned_to", "assignee must hold the authority role")
	}

	complaint.AssignedTo = &assignee.ID
	if complaint.Status == models.StatusPending {
		complaint.Status = models.StatusInvestigating
	}
	if err := s.complaintRepo.Update(ctx, complaint); err != nil {
		return nil, err
	}

	s.publishEvent("complaint.assigned", complaint)
	return complaint, nil
}

// ownership resolves the complaint's owner and assignee down to user ids for
// the policy gate. The repository preloads both profiles.
func (s *ComplaintService) ownership(complaint *models.Complaint) policy.Row {
	row := policy.Row{OwnerUserID: complaint.Complainant.UserID}
	if complaint.Assignee != nil {
		row.AssignedUserID = &complaint.Assignee.UserID
	}
	return row
}

func (s *ComplaintService) publishEvent(eventType string, complaint *models.Complaint) {
	if s.producer == nil {
		return
	}
	event := messaging.ComplaintEvent{
		Type:        eventType,
		ComplaintID: complaint.ID.String(),
		Status:      complaint.Status,
		AreaID:      complaint.AreaID.String(),
	}
	if complaint.VendorID != nil {
		event.VendorID = complaint.VendorID.String()
	}
	if err := s.producer.SendMessage(messaging.TopicComplaintEvents, s.brokers, complaint.ID.String(), event); err != nil {
		log.Printf("failed to publish complaint event %s for %s: %v", eventType, complaint.ID, err)
	}
}
