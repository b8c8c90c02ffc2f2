// Package authz enforces who may perform ledger and reporting operations.
// Authorization is two-layered: the staff member must hold one of the roles
// the operation requires, and must be assigned to the target location.
package authz

import (
	"github.com/google/uuid"

	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	"github.com/larderhq/larder-backend/pkg/errors"
)

// Capability names the roles an operation accepts. AnyRole skips the role
// check entirely; the location check always applies.
type Capability struct {
	Name    string
	Roles   []enums.StaffRole
	AnyRole bool
}

var (
	// RecordDelivery is restricted to kitchen staff who receive goods.
	RecordDelivery = Capability{
		Name:  "stock.delivery",
		Roles: []enums.StaffRole{enums.StaffRoleChef, enums.StaffRoleBackOfHouse},
	}

	// RecordWaste is open to every role; anyone may log spoilage.
	RecordWaste = Capability{
		Name:    "stock.waste",
		AnyRole: true,
	}

	// SellMenuItem is front-of-house only.
	SellMenuItem = Capability{
		Name:  "menu.sell",
		Roles: []enums.StaffRole{enums.StaffRoleFrontOfHouse},
	}

	// ViewReports is manager-only.
	ViewReports = Capability{
		Name:  "reports.view",
		Roles: []enums.StaffRole{enums.StaffRoleManager},
	}
)

// Check returns a FORBIDDEN error unless the staff member holds an accepted
// role and is assigned to the location.
func (c Capability) Check(staff *models.Staff, locationID uuid.UUID) error {
	if staff == nil {
		return errors.New(errors.CodeForbidden, "staff member required for "+c.Name)
	}
	if !c.AnyRole && !c.allows(staff.Role) {
		return errors.New(errors.CodeForbidden, "role "+staff.Role.String()+" may not perform "+c.Name)
	}
	if !staff.AuthorizedAt(locationID) {
		return errors.New(errors.CodeForbidden, "staff member is not assigned to location "+locationID.String())
	}
	return nil
}

func (c Capability) allows(role enums.StaffRole) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
