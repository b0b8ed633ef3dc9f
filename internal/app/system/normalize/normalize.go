// Package normalize canonicalizes user-supplied strings before they are
// validated or stored. Handlers run every inbound field through one of
// these helpers so stores never see raw form or JSON input.
package normalize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips all markup. Built once; bluemonday policies are safe
// for concurrent use.
var strict = bluemonday.StrictPolicy()

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role value (admin, tutor, student).
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a search or filter parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Text strips HTML markup from free-form text fields such as task
// descriptions, submission content, feedback, and doubt questions,
// then trims the result.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// ObjectIDParam trims an ID path or query parameter. The literal "all"
// (any case) converts to empty, meaning no filter.
func ObjectIDParam(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ""
	}
	return s
}
