// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"
)

// Roles recognized by the system.
const (
	RoleAdmin   = "admin"
	RoleTutor   = "tutor"
	RoleStudent = "student"
)

// IsValidRole reports whether role is one of the recognized roles.
func IsValidRole(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdmin, RoleTutor, RoleStudent:
		return true
	}
	return false
}

// HasAnyRole reports whether the current request's user has any of the given roles.
// Returns false if no user is present (i.e., not signed in).
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	cur := strings.ToLower(role)
	for _, want := range roles {
		if cur == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// Role returns the current user's role (lowercased) and whether a user is present.
func Role(r *http.Request) (string, bool) {
	role, _, _, ok := UserCtx(r)
	return strings.ToLower(role), ok
}
