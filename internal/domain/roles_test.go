package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	cases := []struct {
		role string
		ok   bool
	}{
		{"user", true},
		{"admin", true},
		{"", false},
		{"root", false},
	}

	for _, c := range cases {
		assert.Equal(t, c.ok, IsValidRole(c.role), "IsValidRole(%q)", c.role)
	}
}

func TestRoleRank(t *testing.T) {
	assert.Less(t, RoleRank("user"), RoleRank("admin"))
	assert.Zero(t, RoleRank("invalid"))
}
