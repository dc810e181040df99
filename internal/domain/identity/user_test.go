package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_HasAccessToStore(t *testing.T) {
	owner := &User{ID: 1}
	admin := &User{ID: 2, Roles: []string{"viewer", RoleAdmin}}
	other := &User{ID: 3, Roles: []string{"viewer"}}

	assert.True(t, owner.HasAccessToStore(1))
	assert.True(t, admin.HasAccessToStore(1))
	assert.False(t, other.HasAccessToStore(1))
	assert.True(t, other.HasRole("viewer"))
	assert.False(t, other.HasRole(RoleAdmin))
}
