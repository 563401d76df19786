package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRoleKind(t *testing.T) {
	cases := []struct {
		name string
		want RoleKind
	}{
		{RoleNameSuperAdmin, RoleSuperAdmin},
		{RoleNameAdmin, RoleAdmin},
		{RoleNameEditor, RoleEditor},
		{RoleNameWriter, RoleWriter},
		// the match is exact and case-sensitive
		{"super admin", RoleUnknown},
		{"SUPER ADMIN", RoleUnknown},
		{"admin", RoleUnknown},
		{"writer", RoleUnknown},
		{"Moderator", RoleUnknown},
		{"", RoleUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseRoleKind(tc.name), "role name %q", tc.name)
	}
}

func TestUserKind(t *testing.T) {
	var nilUser *User
	assert.Equal(t, RoleUnknown, nilUser.Kind())

	assert.Equal(t, RoleUnknown, (&User{}).Kind(), "user without a role has zero privilege")

	roleID := uuid.New()
	u := &User{RoleID: &roleID, RoleKind: RoleSuperAdmin}
	assert.Equal(t, RoleSuperAdmin, u.Kind())
	assert.True(t, u.IsSuperAdmin())
	assert.False(t, (&User{}).IsSuperAdmin())
}
