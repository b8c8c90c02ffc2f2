package enums

import "fmt"

// StaffRole represents a staff member's job function.
type StaffRole string

const (
	StaffRoleBackOfHouse  StaffRole = "back_of_house"
	StaffRoleChef         StaffRole = "chef"
	StaffRoleFrontOfHouse StaffRole = "front_of_house"
	StaffRoleManager      StaffRole = "manager"
)

var validStaffRoles = []StaffRole{
	StaffRoleBackOfHouse,
	StaffRoleChef,
	StaffRoleFrontOfHouse,
	StaffRoleManager,
}

// String implements fmt.Stringer.
func (r StaffRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known StaffRole.
func (r StaffRole) IsValid() bool {
	for _, candidate := range validStaffRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStaffRole converts raw input into a StaffRole.
func ParseStaffRole(value string) (StaffRole, error) {
	for _, candidate := range validStaffRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid staff role %q", value)
}
