// Package policy is the single authorization gate for every read and write
// against the civic tables. The rule table below is the one source of truth;
// services must call Authorize before executing a mutation instead of
// scattering ad hoc checks.
//
// Ownership is transitive: business rows reference a Profile, never the raw
// identity, so callers resolve the owning profile's user_id and hand it in as
// Row.OwnerUserID.
package policy

import (
	"golang-civic-backend/internal/errs"
	"golang-civic-backend/internal/models"

	"github.com/google/uuid"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAssign Action = "assign"
)

type Table string

const (
	TableAreas      Table = "areas"
	TableProfiles   Table = "profiles"
	TableVendors    Table = "vendors"
	TableComplaints Table = "complaints"
	TableRatings    Table = "ratings"
)

// Caller is the authenticated identity performing the operation.
type Caller struct {
	UserID uuid.UUID
	Role   string
}

// Row carries the resolved ownership of the target row. OwnerUserID is the
// user_id of the profile the row references (complainant, reviewer, vendor
// owner, or the profile itself); AssignedUserID is set for complaints with an
// assignee.
type Row struct {
	OwnerUserID    uuid.UUID
	AssignedUserID *uuid.UUID
}

type rule func(c Caller, r Row) bool

func anyone(Caller, Row) bool { return true }

func admin(c Caller, _ Row) bool { return c.Role == models.RoleAdmin }

func owner(c Caller, r Row) bool { return c.UserID == r.OwnerUserID }

func ownerOrAdmin(c Caller, r Row) bool { return owner(c, r) || admin(c, r) }

func elevated(c Caller, _ Row) bool {
	return c.Role == models.RoleAuthority || c.Role == models.RoleAdmin
}

func complaintParty(c Caller, r Row) bool {
	if owner(c, r) || elevated(c, r) {
		return true
	}
	return r.AssignedUserID != nil && *r.AssignedUserID == c.UserID
}

func complaintMutator(c Caller, r Row) bool {
	return owner(c, r) || elevated(c, r)
}

var rules = map[Table]map[Action]rule{
	TableAreas: {
		ActionRead:   anyone,
		ActionInsert: admin,
		ActionUpdate: admin,
	},
	TableProfiles: {
		ActionRead:   anyone,
		ActionInsert: owner,
		ActionUpdate: ownerOrAdmin,
		ActionDelete: ownerOrAdmin,
	},
	TableVendors: {
		ActionRead:   anyone,
		ActionInsert: owner,
		ActionUpdate: ownerOrAdmin,
	},
	TableComplaints: {
		ActionRead:   complaintParty,
		ActionInsert: owner,
		ActionUpdate: complaintMutator,
		ActionAssign: elevated,
	},
	TableRatings: {
		ActionRead:   anyone,
		ActionInsert: owner,
		ActionUpdate: ownerOrAdmin,
		ActionDelete: ownerOrAdmin,
	},
}

// Authorize decides allow/deny for one operation. Unknown table/action pairs
// deny, so an unlisted operation cannot slip through.
func Authorize(c Caller, a Action, t Table, r Row) error {
	actions, ok := rules[t]
	if !ok {
		return errs.Authorization()
	}
	rl, ok := actions[a]
	if !ok {
		return errs.Authorization()
	}
	if !rl(c, r) {
		return errs.Authorization()
	}
	return nil
}
