package domain

// Role is the access level of a user account. It is unrelated to the
// catalog JobRole entity.
type Role string

const (
	// RoleUser manages their own account.
	RoleUser Role = "user"
	// RoleAdmin additionally administers the role/skill catalog and other accounts.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// RoleRank: bigger => higher privilege
func RoleRank(r string) int {
	switch r {
	case string(RoleUser):
		return 1
	case string(RoleAdmin):
		return 2
	default:
		return 0
	}
}
