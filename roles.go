package blog

import "strings"

var roleHierarchy = map[UserRole]int{
	RoleUser:  0,
	RoleAdmin: 1,
}

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// IsAtLeast checks if this role meets the minimum required level
func (r UserRole) IsAtLeast(minRole UserRole) bool {
	level, ok := roleHierarchy[r]
	if !ok {
		return false
	}
	required, ok := roleHierarchy[minRole]
	if !ok {
		return false
	}
	return level >= required
}

// ParseRole normalizes a raw role name. Unknown names are returned
// as is so validation can reject them.
func ParseRole(raw string) UserRole {
	return UserRole(strings.ToLower(strings.TrimSpace(raw)))
}
