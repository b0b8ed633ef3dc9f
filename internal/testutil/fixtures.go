package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studytrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role. The password for
// every fixture user is "password123".
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Admin", uniqueEmail("admin"), "admin")
}

// CreateTutor creates a test tutor user.
func (f *Fixtures) CreateTutor(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Tutor", uniqueEmail("tutor"), "tutor")
}

// CreateStudent creates a test student user.
func (f *Fixtures) CreateStudent(ctx context.Context) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, "Test Student", uniqueEmail("student"), "student")
}

func uniqueEmail(prefix string) string {
	return prefix + "-" + primitive.NewObjectID().Hex() + "@test.com"
}

// CreateBatch creates a test batch. tutorID may be nil and studentIDs
// may be empty. Users pointing back at the batch are updated too, so
// the fixture data satisfies the same invariants as production data.
func (f *Fixtures) CreateBatch(ctx context.Context, name string, tutorID *primitive.ObjectID, studentIDs []primitive.ObjectID) models.Batch {
	f.t.Helper()

	if studentIDs == nil {
		studentIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	batch := models.Batch{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		TutorID:    tutorID,
		StudentIDs: studentIDs,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("batches").InsertOne(ctx, batch); err != nil {
		f.t.Fatalf("failed to create test batch: %v", err)
	}

	members := studentIDs
	if tutorID != nil {
		members = append(append([]primitive.ObjectID{}, studentIDs...), *tutorID)
	}
	if len(members) > 0 {
		_, err := f.db.Collection("users").UpdateMany(ctx,
			map[string]any{"_id": map[string]any{"$in": members}},
			map[string]any{"$set": map[string]any{"batch_id": batch.ID}})
		if err != nil {
			f.t.Fatalf("failed to point users at test batch: %v", err)
		}
	}
	return batch
}

// CreateRoadmap creates a test roadmap in a batch.
func (f *Fixtures) CreateRoadmap(ctx context.Context, batchID, createdBy primitive.ObjectID, title string) models.Roadmap {
	f.t.Helper()

	now := time.Now().UTC()
	rm := models.Roadmap{
		ID:          primitive.NewObjectID(),
		BatchID:     batchID,
		Title:       title,
		Description: "Fixture roadmap",
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("roadmaps").InsertOne(ctx, rm); err != nil {
		f.t.Fatalf("failed to create test roadmap: %v", err)
	}
	return rm
}

// CreateTask creates a test task under a roadmap with the given due date.
func (f *Fixtures) CreateTask(ctx context.Context, roadmapID, createdBy primitive.ObjectID, title string, due time.Time) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:          primitive.NewObjectID(),
		RoadmapID:   roadmapID,
		Title:       title,
		Description: "Fixture task",
		DueDate:     due,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateSubmission creates a test submission, optionally already reviewed
// with the given stars.
func (f *Fixtures) CreateSubmission(ctx context.Context, studentID, taskID primitive.ObjectID, reviewed bool, stars int) models.Submission {
	f.t.Helper()

	now := time.Now().UTC()
	sub := models.Submission{
		ID:          primitive.NewObjectID(),
		StudentID:   studentID,
		TaskID:      taskID,
		Content:     "Fixture submission",
		SubmittedAt: now,
	}
	if reviewed {
		sub.IsReviewed = true
		sub.StarsGiven = stars
		sub.Feedback = "Fixture feedback"
		sub.ReviewedAt = &now
	}

	if _, err := f.db.Collection("submissions").InsertOne(ctx, sub); err != nil {
		f.t.Fatalf("failed to create test submission: %v", err)
	}
	return sub
}

// CreateDoubt creates a test doubt for a student.
func (f *Fixtures) CreateDoubt(ctx context.Context, studentID primitive.ObjectID, question string) models.Doubt {
	f.t.Helper()

	d := models.Doubt{
		ID:          primitive.NewObjectID(),
		StudentID:   studentID,
		Question:    question,
		SubmittedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("doubts").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test doubt: %v", err)
	}
	return d
}
