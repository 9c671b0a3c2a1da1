package policy_test

import (
	"testing"

	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeMatrix(t *testing.T) {
	ownerID := uuid.New()
	assigneeID := uuid.New()
	strangerID := uuid.New()

	ownedRow := policy.Row{OwnerUserID: ownerID}
	assignedRow := policy.Row{OwnerUserID: ownerID, AssignedUserID: &assigneeID}

	asOwner := policy.Caller{UserID: ownerID, Role: "consumer"}
	// role deliberately non-elevated so the assignee branch is what allows
	asAssignee := policy.Caller{UserID: assigneeID, Role: "consumer"}
	asStranger := policy.Caller{UserID: strangerID, Role: "consumer"}
	asAuthority := policy.Caller{UserID: strangerID, Role: "authority"}
	asAdmin := policy.Caller{UserID: strangerID, Role: "admin"}

	tests := []struct {
		name    string
		caller  policy.Caller
		action  policy.Action
		table   policy.Table
		row     policy.Row
		allowed bool
	}{
		// areas: public read, admin-only writes
		{"anyone reads areas", asStranger, policy.ActionRead, policy.TableAreas, policy.Row{}, true},
		{"consumer cannot create area", asOwner, policy.ActionInsert, policy.TableAreas, policy.Row{}, false},
		{"authority cannot create area", asAuthority, policy.ActionInsert, policy.TableAreas, policy.Row{}, false},
		{"admin creates area", asAdmin, policy.ActionInsert, policy.TableAreas, policy.Row{}, true},
		{"admin updates area", asAdmin, policy.ActionUpdate, policy.TableAreas, policy.Row{}, true},
		{"area delete unlisted so denied even for admin", asAdmin, policy.ActionDelete, policy.TableAreas, policy.Row{}, false},

		// profiles
		{"anyone reads profile", asStranger, policy.ActionRead, policy.TableProfiles, ownedRow, true},
		{"owner inserts own profile", asOwner, policy.ActionInsert, policy.TableProfiles, ownedRow, true},
		{"stranger cannot insert profile for another user", asStranger, policy.ActionInsert, policy.TableProfiles, ownedRow, false},
		{"owner updates profile", asOwner, policy.ActionUpdate, policy.TableProfiles, ownedRow, true},
		{"admin updates any profile", asAdmin, policy.ActionUpdate, policy.TableProfiles, ownedRow, true},
		{"authority cannot update another profile", asAuthority, policy.ActionUpdate, policy.TableProfiles, ownedRow, false},

		// vendors
		{"anyone reads vendor", asStranger, policy.ActionRead, policy.TableVendors, ownedRow, true},
		{"owner registers vendor", asOwner, policy.ActionInsert, policy.TableVendors, ownedRow, true},
		{"owner updates vendor", asOwner, policy.ActionUpdate, policy.TableVendors, ownedRow, true},
		{"stranger cannot update vendor", asStranger, policy.ActionUpdate, policy.TableVendors, ownedRow, false},
		{"vendor delete unlisted so denied", asAdmin, policy.ActionDelete, policy.TableVendors, ownedRow, false},

		// complaints: restricted read, party-only
		{"complainant reads own complaint", asOwner, policy.ActionRead, policy.TableComplaints, ownedRow, true},
		{"stranger cannot read complaint", asStranger, policy.ActionRead, policy.TableComplaints, ownedRow, false},
		{"assignee reads assigned complaint", asAssignee, policy.ActionRead, policy.TableComplaints, assignedRow, true},
		{"authority reads any complaint", asAuthority, policy.ActionRead, policy.TableComplaints, ownedRow, true},
		{"admin reads any complaint", asAdmin, policy.ActionRead, policy.TableComplaints, ownedRow, true},
		{"complainant files complaint", asOwner, policy.ActionInsert, policy.TableComplaints, ownedRow, true},
		{"stranger cannot file complaint as another profile", asStranger, policy.ActionInsert, policy.TableComplaints, ownedRow, false},
		{"complainant updates own complaint", asOwner, policy.ActionUpdate, policy.TableComplaints, ownedRow, true},
		{"authority updates complaint", asAuthority, policy.ActionUpdate, policy.TableComplaints, ownedRow, true},
		{"stranger cannot update complaint", asStranger, policy.ActionUpdate, policy.TableComplaints, ownedRow, false},
		{"authority assigns complaint", asAuthority, policy.ActionAssign, policy.TableComplaints, ownedRow, true},
		{"admin assigns complaint", asAdmin, policy.ActionAssign, policy.TableComplaints, ownedRow, true},
		{"complainant cannot assign own complaint", asOwner, policy.ActionAssign, policy.TableComplaints, ownedRow, false},
		{"assign unlisted outside complaints so denied", asAdmin, policy.ActionAssign, policy.TableRatings, ownedRow, false},

		// ratings
		{"anyone reads ratings", asStranger, policy.ActionRead, policy.TableRatings, ownedRow, true},
		{"reviewer submits own rating", asOwner, policy.ActionInsert, policy.TableRatings, ownedRow, true},
		{"stranger cannot submit rating as another reviewer", asStranger, policy.ActionInsert, policy.TableRatings, ownedRow, false},
		{"reviewer edits own rating", asOwner, policy.ActionUpdate, policy.TableRatings, ownedRow, true},
		{"admin deletes any rating", asAdmin, policy.ActionDelete, policy.TableRatings, ownedRow, true},
		{"authority cannot delete another reviewer's rating", asAuthority, policy.ActionDelete, policy.TableRatings, ownedRow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.caller, tt.action, tt.table, tt.row)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.True(t, errs.IsAuthorization(err), "expected authorization error, got %v", err)
			}
		})
	}
}

func TestAuthorizeUnknownTableDenies(t *testing.T) {
	admin := policy.Caller{UserID: uuid.New(), Role: "admin"}
	err := policy.Authorize(admin, policy.ActionRead, policy.Table("audit_log"), policy.Row{})
	assert.True(t, errs.IsAuthorization(err))
}
