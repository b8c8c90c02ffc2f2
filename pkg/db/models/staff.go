package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larderhq/larder-backend/pkg/enums"
)

// Staff is a member of staff and the locations they are authorized to act in.
type Staff struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Role      enums.StaffRole `gorm:"column:role;type:staff_role_enum;not null"`
	Locations []Location      `gorm:"many2many:staff_locations"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (s *Staff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AuthorizedAt reports whether the staff member is assigned to the location.
func (s *Staff) AuthorizedAt(locationID uuid.UUID) bool {
	if s == nil {
		return false
	}
	for _, loc := range s.Locations {
		if loc.ID == locationID {
			return true
		}
	}
	return false
}
