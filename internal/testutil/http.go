package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/dalemusser/studytrack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID      string
	Name    string
	Email   string
	Role    string
	BatchID string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "admin",
	}
}

// TutorUser returns a TestUser with tutor role.
func TutorUser() TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  "Test Tutor",
		Email: "tutor@test.com",
		Role:  "tutor",
	}
}

// StudentUser returns a TestUser with student role enrolled in batchID.
func StudentUser(batchID primitive.ObjectID) TestUser {
	return TestUser{
		ID:      primitive.NewObjectID().Hex(),
		Name:    "Test Student",
		Email:   "student@test.com",
		Role:    "student",
		BatchID: batchID.Hex(),
	}
}

// AsUser converts a fixture user's identity into a TestUser so handler
// tests can act as a user that really exists in the test database.
func AsUser(id primitive.ObjectID, name, email, role string, batchID *primitive.ObjectID) TestUser {
	tu := TestUser{
		ID:    id.Hex(),
		Name:  name,
		Email: email,
		Role:  role,
	}
	if batchID != nil {
		tu.BatchID = batchID.Hex()
	}
	return tu
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the auth middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Role:    user.Role,
		BatchID: user.BatchID,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, body io.Reader, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, body)
	return WithUser(req, user)
}
