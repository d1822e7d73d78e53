package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRoleSatisfies(t *testing.T) {
	cases := []struct {
		name     string
		role     UserRole
		required UserRole
		want     bool
	}{
		{"admin passes admin gate", RoleAdmin, RoleAdmin, true},
		{"admin passes teacher gate", RoleAdmin, RoleTeacher, true},
		{"admin passes student gate", RoleAdmin, RoleStudent, true},
		{"teacher passes teacher gate", RoleTeacher, RoleTeacher, true},
		{"teacher fails admin gate", RoleTeacher, RoleAdmin, false},
		{"teacher fails student gate", RoleTeacher, RoleStudent, false},
		{"student passes student gate", RoleStudent, RoleStudent, true},
		{"student fails teacher gate", RoleStudent, RoleTeacher, false},
		{"unknown role fails every gate", UserRole("SUPERVISOR"), RoleStudent, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.role.Satisfies(tc.required))
		})
	}
}

func TestUserRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, UserRole("").Valid())
	assert.False(t, UserRole("root").Valid())
}
