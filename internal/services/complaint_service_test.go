package services_test

import (
	"context"
	"testing"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"
	"golang-civic-backend/internal/policy"
	"golang-civic-backend/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type complaintFixture struct {
	svc        *services.ComplaintService
	complaints *mockComplaintRepo
	profiles   *mockProfileRepo
	areas      *mockAreaRepo
	vendors    *mockVendorRepo

	area        *models.Area
	complainant *models.Profile
	authority   *models.Profile

	asComplainant policy.Caller
	asAuthority   policy.Caller
}

func newComplaintFixture(t *testing.T) *complaintFixture {
	t.Helper()

	profiles := newMockProfileRepo()
	complaints := newMockComplaintRepo(profiles)
	areas := newMockAreaRepo()
	vendors := newMockVendorRepo()
	ctx := context.Background()

	area := &models.Area{Name: "Gandhi Bazaar", District: "Bengaluru Urban", State: "Karnataka"}
	require.NoError(t, areas.Create(ctx, area))

	complainant := &models.Profile{UserID: uuid.New(), FullName: "Asha", Role: models.RoleConsumer}
	require.NoError(t, profiles.Create(ctx, complainant))

	authority := &models.Profile{UserID: uuid.New(), FullName: "Inspector Rao", Role: models.RoleAuthority}
	require.NoError(t, profiles.Create(ctx, authority))

	return &complaintFixture{
		svc:           services.NewComplaintService(complaints, profiles, areas, vendors, nil, nil),
		complaints:    complaints,
		profiles:      profiles,
		areas:         areas,
		vendors:       vendors,
		area:          area,
		complainant:   complainant,
		authority:     authority,
		asComplainant: policy.Caller{UserID: complainant.UserID, Role: complainant.Role},
		asAuthority:   policy.Caller{UserID: authority.UserID, Role: authority.Role},
	}
}

func (f *complaintFixture) file(t *testing.T) *models.Complaint {
	t.Helper()
	complaint, err := f.svc.FileComplaint(context.Background(), f.asComplainant, &services.FileComplaintRequest{
		AreaID:      f.area.ID,
		Category:    models.CategoryHygiene,
		Description: "stall waste dumped by the drain",
	})
	require.NoError(t, err)
	return complaint
}

func TestFileComplaintDefaults(t *testing.T) {
	f := newComplaintFixture(t)

	complaint := f.file(t)
	assert.Equal(t, models.StatusPending, complaint.Status)
	assert.Equal(t, models.PriorityMedium, complaint.Priority)
	assert.Equal(t, f.complainant.ID, complaint.ComplainantID)
	assert.Nil(t, complaint.ResolvedAt)
}

func TestFileComplaintValidation(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()

	_, err := f.svc.FileComplaint(ctx, f.asComplainant, &services.FileComplaintRequest{
		AreaID: f.area.ID, Category: "noise", Description: "x",
	})
	assert.True(t, errs.IsValidation(err))

	_, err = f.svc.FileComplaint(ctx, f.asComplainant, &services.FileComplaintRequest{
		AreaID: f.area.ID, Category: models.CategoryPricing, Description: "x", Priority: "urgent",
	})
	assert.True(t, errs.IsValidation(err))

	_, err = f.svc.FileComplaint(ctx, f.asComplainant, &services.FileComplaintRequest{
		AreaID: uuid.New(), Category: models.CategoryPricing, Description: "x",
	})
	assert.True(t, errs.IsNotFound(err))

	ghostVendor := uuid.New()
	_, err = f.svc.FileComplaint(ctx, f.asComplainant, &services.FileComplaintRequest{
		AreaID: f.area.ID, VendorID: &ghostVendor, Category: models.CategoryPricing, Description: "x",
	})
	assert.True(t, errs.IsNotFound(err))
}

func TestGetComplaintRestrictedRead(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	complaint := f.file(t)

	_, err := f.svc.GetComplaint(ctx, f.asComplainant, complaint.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetComplaint(ctx, f.asAuthority, complaint.ID)
	assert.NoError(t, err)

	stranger := policy.Caller{UserID: uuid.New(), Role: models.RoleConsumer}
	_, err = f.svc.GetComplaint(ctx, stranger, complaint.ID)
	assert.True(t, errs.IsAuthorization(err))
}

func TestUpdateStatusSetsResolvedAtOnTerminal(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	complaint := f.file(t)

	notes := "vendor cleaned the stall"
	updated, err := f.svc.UpdateStatus(ctx, f.asAuthority, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status:          models.StatusResolved,
		ResolutionNotes: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	require.NotNil(t, updated.ResolutionNotes)
	assert.Equal(t, notes, *updated.ResolutionNotes)
}

func TestUpdateStatusReopenClearsResolution(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	complaint := f.file(t)

	notes := "done"
	_, err := f.svc.UpdateStatus(ctx, f.asAuthority, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status: models.StatusResolved, ResolutionNotes: &notes,
	})
	require.NoError(t, err)

	reopened, err := f.svc.UpdateStatus(ctx, f.asAuthority, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status: models.StatusInvestigating,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvestigating, reopened.Status)
	assert.Nil(t, reopened.ResolvedAt, "reopening must clear resolved_at")
	assert.Nil(t, reopened.ResolutionNotes)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	complaint := f.file(t)

	_, err := f.svc.UpdateStatus(ctx, f.asAuthority, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status: models.StatusResolved,
	})
	require.NoError(t, err)

	// resolved → dismissed is not in the lifecycle; only reopen is.
	_, err = f.svc.UpdateStatus(ctx, f.asAuthority, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status: models.StatusDismissed,
	})
	assert.True(t, errs.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, f.asAuthority, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status: "escalated",
	})
	assert.True(t, errs.IsValidation(err))
}

func TestUpdateStatusByStrangerDenied(t *testing.T) {
	f := newComplaintFixture(t)
	complaint := f.file(t)

	stranger := policy.Caller{UserID: uuid.New(), Role: models.RoleConsumer}
	_, err := f.svc.UpdateStatus(context.Background(), stranger, complaint.ID, &services.UpdateComplaintStatusRequest{
		Status: models.StatusDismissed,
	})
	assert.True(t, errs.IsAuthorization(err))
	assert.Equal(t, models.StatusPending, f.complaints.complaints[complaint.ID].Status)
}

func TestAssignComplaint(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	complaint := f.file(t)

	assigned, err := f.svc.Assign(ctx, f.asAuthority, complaint.ID, f.authority.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, f.authority.ID, *assigned.AssignedTo)
	assert.Equal(t, models.StatusInvestigating, assigned.Status, "assignment moves a pending complaint to investigating")
}

func TestAssignRejectsNonAuthorityAssignee(t *testing.T) {
	f := newComplaintFixture(t)
	complaint := f.file(t)

	_, err := f.svc.Assign(context.Background(), f.asAuthority, complaint.ID, f.complainant.ID)
	assert.True(t, errs.IsValidation(err))
}

func TestAssignRequiresElevatedCaller(t *testing.T) {
	f := newComplaintFixture(t)
	complaint := f.file(t)

	_, err := f.svc.Assign(context.Background(), f.asComplainant, complaint.ID, f.authority.ID)
	assert.True(t, errs.IsAuthorization(err))
}

func TestListComplaintsVisibility(t *testing.T) {
	f := newComplaintFixture(t)
	ctx := context.Background()
	f.file(t)

	// Another consumer files their own complaint.
	other := &models.Profile{UserID: uuid.New(), FullName: "Kiran", Role: models.RoleConsumer}
	require.NoError(t, f.profiles.Create(ctx, other))
	_, err := f.svc.FileComplaint(ctx, policy.Caller{UserID: other.UserID, Role: other.Role}, &services.FileComplaintRequest{
		AreaID: f.area.ID, Category: models.CategoryPricing, Description: "double pricing for outsiders",
	})
	require.NoError(t, err)

	mine, total, err := f.svc.ListComplaints(ctx, f.asComplainant, services.ComplaintFilters{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, mine, 1)
	assert.False(t, f.complaints.lastElevated)

	all, total, err := f.svc.ListComplaints(ctx, f.asAuthority, services.ComplaintFilters{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
	assert.True(t, f.complaints.lastElevated)
}
