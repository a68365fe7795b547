package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"GUEST", RoleGuest, false},
		{"guest", RoleGuest, false},
		{"RECEPTIONIST", RoleReceptionist, false},
		{"Manager", RoleManager, false},
		{" ADMIN ", RoleAdmin, false},
		{"SUPERUSER", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input: %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input: %q", tt.input)
		assert.Equal(t, tt.want, got, "input: %q", tt.input)
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "GUEST", RoleGuest.String())
	assert.Equal(t, "RECEPTIONIST", RoleReceptionist.String())
	assert.Equal(t, "MANAGER", RoleManager.String())
	assert.Equal(t, "ADMIN", RoleAdmin.String())
}

// Each role lands on exactly its own dashboard; in particular a manager
// must never land on the admin surface.
func TestRoleDashboard(t *testing.T) {
	assert.Equal(t, DashboardGuest, RoleGuest.Dashboard())
	assert.Equal(t, DashboardReceptionist, RoleReceptionist.Dashboard())
	assert.Equal(t, DashboardManager, RoleManager.Dashboard())
	assert.Equal(t, DashboardAdmin, RoleAdmin.Dashboard())

	assert.NotEqual(t, DashboardAdmin, RoleManager.Dashboard())
	assert.NotEqual(t, DashboardReceptionist, RoleManager.Dashboard())
}

func TestRoleStaff(t *testing.T) {
	assert.False(t, RoleGuest.Staff())
	assert.True(t, RoleReceptionist.Staff())
	assert.True(t, RoleManager.Staff())
	assert.False(t, RoleAdmin.Staff())
}
