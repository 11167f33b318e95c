package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"worksync/api/internal/models"
)

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name    string
		caller  models.Role
		target  models.Role
		allowed bool
	}{
		{name: "super admin creates admin", caller: models.RoleSuperAdmin, target: models.RoleAdmin, allowed: true},
		{name: "super admin creates employee", caller: models.RoleSuperAdmin, target: models.RoleEmployee, allowed: true},
		{name: "admin creates employee", caller: models.RoleAdmin, target: models.RoleEmployee, allowed: true},
		{name: "admin cannot create admin", caller: models.RoleAdmin, target: models.RoleAdmin, allowed: false},
		{name: "admin cannot create super admin", caller: models.RoleAdmin, target: models.RoleSuperAdmin, allowed: false},
		{name: "employee cannot create employee", caller: models.RoleEmployee, target: models.RoleEmployee, allowed: false},
		{name: "employee cannot create admin", caller: models.RoleEmployee, target: models.RoleAdmin, allowed: false},
		{name: "nobody creates super admins", caller: models.RoleSuperAdmin, target: models.RoleSuperAdmin, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, canCreate(tt.caller, tt.target))
		})
	}
}
