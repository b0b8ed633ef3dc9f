package inputval

import (
	"net/mail"
	"strings"
)

// allowedRoles is the fixed set of account roles.
var allowedRoles = []string{"admin", "tutor", "student"}

// IsValidRole reports whether role is one of the allowed account roles.
// Comparison trims whitespace and ignores case.
func IsValidRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, allowed := range allowedRoles {
		if role == allowed {
			return true
		}
	}
	return false
}

// AllowedRolesList returns the allowed roles in canonical order, for
// use in error messages and documentation.
func AllowedRolesList() []string {
	out := make([]string, len(allowedRoles))
	copy(out, allowedRoles)
	return out
}

// IsValidEmail reports whether s is a plausible single email address.
// Display-name forms like "User <user@example.com>" are rejected; the
// input must be the bare address. Single-label domains are accepted so
// dev and test environments can use addresses like admin@mailserver.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts display names; requiring the parsed address
	// to equal the input limits us to bare addresses.
	return addr.Address == s
}

// IsValidObjectID reports whether s is a 24-character hex string, the
// text form of a MongoDB ObjectID. Whitespace is trimmed first.
func IsValidObjectID(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 24 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
