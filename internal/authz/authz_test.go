package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderhq/larder-backend/pkg/db/models"
	"github.com/larderhq/larder-backend/pkg/enums"
	"github.com/larderhq/larder-backend/pkg/errors"
)

func staffAt(role enums.StaffRole, locations ...uuid.UUID) *models.Staff {
	s := &models.Staff{ID: uuid.New(), Name: "Robin", Role: role}
	for _, id := range locations {
		s.Locations = append(s.Locations, models.Location{ID: id})
	}
	return s
}

func TestCapabilityCheck(t *testing.T) {
	home := uuid.New()
	elsewhere := uuid.New()

	tests := []struct {
		name       string
		capability Capability
		staff      *models.Staff
		location   uuid.UUID
		wantErr    bool
	}{
		{
			name:       "chef may record deliveries",
			capability: RecordDelivery,
			staff:      staffAt(enums.StaffRoleChef, home),
			location:   home,
		},
		{
			name:       "back of house may record deliveries",
			capability: RecordDelivery,
			staff:      staffAt(enums.StaffRoleBackOfHouse, home),
			location:   home,
		},
		{
			name:       "manager may not record deliveries",
			capability: RecordDelivery,
			staff:      staffAt(enums.StaffRoleManager, home),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "front of house may not record deliveries",
			capability: RecordDelivery,
			staff:      staffAt(enums.StaffRoleFrontOfHouse, home),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "manager may record waste",
			capability: RecordWaste,
			staff:      staffAt(enums.StaffRoleManager, home),
			location:   home,
		},
		{
			name:       "front of house may sell",
			capability: SellMenuItem,
			staff:      staffAt(enums.StaffRoleFrontOfHouse, home),
			location:   home,
		},
		{
			name:       "chef may not sell",
			capability: SellMenuItem,
			staff:      staffAt(enums.StaffRoleChef, home),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "manager may not sell",
			capability: SellMenuItem,
			staff:      staffAt(enums.StaffRoleManager, home),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "reports are manager only",
			capability: ViewReports,
			staff:      staffAt(enums.StaffRoleChef, home),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "right role wrong location is rejected",
			capability: RecordDelivery,
			staff:      staffAt(enums.StaffRoleChef, elsewhere),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "any-role still requires location assignment",
			capability: RecordWaste,
			staff:      staffAt(enums.StaffRoleManager, elsewhere),
			location:   home,
			wantErr:    true,
		},
		{
			name:       "nil staff is rejected",
			capability: RecordWaste,
			staff:      nil,
			location:   home,
			wantErr:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.capability.Check(tc.staff, tc.location)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := errors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.CodeForbidden, appErr.Code())
		})
	}
}
