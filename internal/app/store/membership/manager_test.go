package membership_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/studytrack/internal/app/store/membership"
	"github.com/dalemusser/studytrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) (*membership.Manager, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mgr := membership.NewManager(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	return mgr, fixtures
}

// userBatch reads a user's batch_id straight from the collection.
func userBatch(t *testing.T, ctx context.Context, db *mongo.Database, userID primitive.ObjectID) *primitive.ObjectID {
	t.Helper()
	var doc struct {
		BatchID *primitive.ObjectID `bson:"batch_id"`
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		t.Fatalf("load user: %v", err)
	}
	return doc.BatchID
}

func rosterSize(t *testing.T, ctx context.Context, db *mongo.Database, batchID primitive.ObjectID) int {
	t.Helper()
	var doc struct {
		StudentIDs []primitive.ObjectID `bson:"student_ids"`
	}
	if err := db.Collection("batches").FindOne(ctx, bson.M{"_id": batchID}).Decode(&doc); err != nil {
		t.Fatalf("load batch: %v", err)
	}
	return len(doc.StudentIDs)
}

func TestCreateBatch_WithTutorAndStudents(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	s1 := fixtures.CreateStudent(ctx)
	s2 := fixtures.CreateStudent(ctx)

	b, err := mgr.CreateBatch(ctx, "Batch Alpha", &tutor.ID, []primitive.ObjectID{s1.ID, s2.ID})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	db := fixtures.DB()
	if got := userBatch(t, ctx, db, tutor.ID); got == nil || *got != b.ID {
		t.Errorf("tutor batch pointer: got %v, want %v", got, b.ID)
	}
	for _, sid := range []primitive.ObjectID{s1.ID, s2.ID} {
		if got := userBatch(t, ctx, db, sid); got == nil || *got != b.ID {
			t.Errorf("student %v batch pointer: got %v, want %v", sid, got, b.ID)
		}
	}
	if n := rosterSize(t, ctx, db, b.ID); n != 2 {
		t.Errorf("roster size: got %d, want 2", n)
	}
}

func TestCreateBatch_MovesEnrolledStudents(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	old := fixtures.CreateBatch(ctx, "Old Batch", nil, []primitive.ObjectID{student.ID})

	b, err := mgr.CreateBatch(ctx, "New Batch", nil, []primitive.ObjectID{student.ID})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	db := fixtures.DB()
	if n := rosterSize(t, ctx, db, old.ID); n != 0 {
		t.Errorf("old roster still has %d students", n)
	}
	if got := userBatch(t, ctx, db, student.ID); got == nil || *got != b.ID {
		t.Errorf("student batch pointer: got %v, want %v", got, b.ID)
	}
}

func TestCreateBatch_RejectsWrongRoles(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	tutor := fixtures.CreateTutor(ctx)

	if _, err := mgr.CreateBatch(ctx, "Bad Tutor", &student.ID, nil); !errors.Is(err, membership.ErrNotATutor) {
		t.Errorf("student as tutor: got %v, want ErrNotATutor", err)
	}
	if _, err := mgr.CreateBatch(ctx, "Bad Student", nil, []primitive.ObjectID{tutor.ID}); !errors.Is(err, membership.ErrNotAStudent) {
		t.Errorf("tutor as student: got %v, want ErrNotAStudent", err)
	}
	missing := primitive.NewObjectID()
	if _, err := mgr.CreateBatch(ctx, "Missing Tutor", &missing, nil); !errors.Is(err, membership.ErrUserNotFound) {
		t.Errorf("missing tutor: got %v, want ErrUserNotFound", err)
	}
}

func TestAddStudent(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", nil, nil)

	if err := mgr.AddStudent(ctx, batch.ID, student.ID); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}

	db := fixtures.DB()
	if got := userBatch(t, ctx, db, student.ID); got == nil || *got != batch.ID {
		t.Errorf("student batch pointer: got %v, want %v", got, batch.ID)
	}

	// Second add of the same student conflicts.
	if err := mgr.AddStudent(ctx, batch.ID, student.ID); !errors.Is(err, membership.ErrAlreadyInBatch) {
		t.Errorf("duplicate add: got %v, want ErrAlreadyInBatch", err)
	}
	if n := rosterSize(t, ctx, db, batch.ID); n != 1 {
		t.Errorf("roster size after duplicate add: got %d, want 1", n)
	}
}

func TestAddStudent_MovesFromOtherBatch(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	old := fixtures.CreateBatch(ctx, "Old", nil, []primitive.ObjectID{student.ID})
	next := fixtures.CreateBatch(ctx, "Next", nil, nil)

	if err := mgr.AddStudent(ctx, next.ID, student.ID); err != nil {
		t.Fatalf("AddStudent: %v", err)
	}

	db := fixtures.DB()
	if n := rosterSize(t, ctx, db, old.ID); n != 0 {
		t.Errorf("old roster size: got %d, want 0", n)
	}
	if n := rosterSize(t, ctx, db, next.ID); n != 1 {
		t.Errorf("new roster size: got %d, want 1", n)
	}
}

func TestRemoveStudent(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", nil, []primitive.ObjectID{student.ID})

	if err := mgr.RemoveStudent(ctx, batch.ID, student.ID); err != nil {
		t.Fatalf("RemoveStudent: %v", err)
	}

	db := fixtures.DB()
	if got := userBatch(t, ctx, db, student.ID); got != nil {
		t.Errorf("student batch pointer not cleared: %v", got)
	}

	// Removing again reports the student is not enrolled.
	if err := mgr.RemoveStudent(ctx, batch.ID, student.ID); !errors.Is(err, membership.ErrNotInBatch) {
		t.Errorf("second remove: got %v, want ErrNotInBatch", err)
	}
}

func TestAssignTutor_ReplacesPrevious(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	oldTutor := fixtures.CreateTutor(ctx)
	newTutor := fixtures.CreateTutor(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &oldTutor.ID, nil)

	if err := mgr.AssignTutor(ctx, batch.ID, newTutor.ID); err != nil {
		t.Fatalf("AssignTutor: %v", err)
	}

	db := fixtures.DB()
	var doc struct {
		TutorID *primitive.ObjectID `bson:"tutor_id"`
	}
	if err := db.Collection("batches").FindOne(ctx, bson.M{"_id": batch.ID}).Decode(&doc); err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if doc.TutorID == nil || *doc.TutorID != newTutor.ID {
		t.Errorf("batch tutor: got %v, want %v", doc.TutorID, newTutor.ID)
	}
	if got := userBatch(t, ctx, db, oldTutor.ID); got != nil {
		t.Errorf("old tutor still points at %v", got)
	}
	if got := userBatch(t, ctx, db, newTutor.ID); got == nil || *got != batch.ID {
		t.Errorf("new tutor pointer: got %v, want %v", got, batch.ID)
	}
}

func TestDeleteBatch_ClearsMembers(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})

	if err := mgr.DeleteBatch(ctx, batch.ID); err != nil {
		t.Fatalf("DeleteBatch: %v", err)
	}

	db := fixtures.DB()
	if got := userBatch(t, ctx, db, tutor.ID); got != nil {
		t.Errorf("tutor pointer not cleared: %v", got)
	}
	if got := userBatch(t, ctx, db, student.ID); got != nil {
		t.Errorf("student pointer not cleared: %v", got)
	}
	count, err := db.Collection("batches").CountDocuments(ctx, bson.M{"_id": batch.ID})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if count != 0 {
		t.Error("batch document still present")
	}

	if err := mgr.DeleteBatch(ctx, batch.ID); !errors.Is(err, membership.ErrBatchNotFound) {
		t.Errorf("second delete: got %v, want ErrBatchNotFound", err)
	}
}

func TestUpdateBatch_DiffsRoster(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	keep := fixtures.CreateStudent(ctx)
	drop := fixtures.CreateStudent(ctx)
	add := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", nil, []primitive.ObjectID{keep.ID, drop.ID})

	next := []primitive.ObjectID{keep.ID, add.ID}
	if err := mgr.UpdateBatch(ctx, batch.ID, membership.BatchUpdate{StudentIDs: &next}); err != nil {
		t.Fatalf("UpdateBatch: %v", err)
	}

	db := fixtures.DB()
	if got := userBatch(t, ctx, db, drop.ID); got != nil {
		t.Errorf("dropped student still points at %v", got)
	}
	if got := userBatch(t, ctx, db, add.ID); got == nil || *got != batch.ID {
		t.Errorf("added student pointer: got %v, want %v", got, batch.ID)
	}
	if got := userBatch(t, ctx, db, keep.ID); got == nil || *got != batch.ID {
		t.Errorf("kept student pointer: got %v, want %v", got, batch.ID)
	}
	if n := rosterSize(t, ctx, db, batch.ID); n != 2 {
		t.Errorf("roster size: got %d, want 2", n)
	}
}

func TestApplyUserChange_TutorToStudent(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, nil)

	role := "student"
	if err := mgr.ApplyUserChange(ctx, tutor.ID, membership.UserChange{Role: &role}); err != nil {
		t.Fatalf("ApplyUserChange: %v", err)
	}

	db := fixtures.DB()
	var doc struct {
		TutorID *primitive.ObjectID `bson:"tutor_id"`
	}
	if err := db.Collection("batches").FindOne(ctx, bson.M{"_id": batch.ID}).Decode(&doc); err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if doc.TutorID != nil {
		t.Errorf("batch still has tutor %v", doc.TutorID)
	}
	if got := userBatch(t, ctx, db, tutor.ID); got != nil {
		t.Errorf("user still points at batch %v", got)
	}
}

func TestApplyUserChange_MoveStudentToBatch(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	old := fixtures.CreateBatch(ctx, "Old", nil, []primitive.ObjectID{student.ID})
	next := fixtures.CreateBatch(ctx, "Next", nil, nil)

	if err := mgr.ApplyUserChange(ctx, student.ID, membership.UserChange{BatchID: &next.ID}); err != nil {
		t.Fatalf("ApplyUserChange: %v", err)
	}

	db := fixtures.DB()
	if n := rosterSize(t, ctx, db, old.ID); n != 0 {
		t.Errorf("old roster size: got %d, want 0", n)
	}
	if n := rosterSize(t, ctx, db, next.ID); n != 1 {
		t.Errorf("new roster size: got %d, want 1", n)
	}
	if got := userBatch(t, ctx, db, student.ID); got == nil || *got != next.ID {
		t.Errorf("student pointer: got %v, want %v", got, next.ID)
	}
}

func TestApplyUserChange_ClearBatch(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", nil, []primitive.ObjectID{student.ID})

	if err := mgr.ApplyUserChange(ctx, student.ID, membership.UserChange{ClearBatch: true}); err != nil {
		t.Fatalf("ApplyUserChange: %v", err)
	}

	db := fixtures.DB()
	if n := rosterSize(t, ctx, db, batch.ID); n != 0 {
		t.Errorf("roster size: got %d, want 0", n)
	}
	if got := userBatch(t, ctx, db, student.ID); got != nil {
		t.Errorf("student pointer not cleared: %v", got)
	}
}

func TestDeleteUser_DetachesFirst(t *testing.T) {
	mgr, fixtures := newTestManager(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", nil, []primitive.ObjectID{student.ID})

	if err := mgr.DeleteUser(ctx, student.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	db := fixtures.DB()
	if n := rosterSize(t, ctx, db, batch.ID); n != 0 {
		t.Errorf("roster size: got %d, want 0", n)
	}
	count, err := db.Collection("users").CountDocuments(ctx, bson.M{"_id": student.ID})
	if err != nil {
		t.Fatalf("CountDocuments: %v", err)
	}
	if count != 0 {
		t.Error("user document still present")
	}

	if err := mgr.DeleteUser(ctx, student.ID); !errors.Is(err, membership.ErrUserNotFound) {
		t.Errorf("second delete: got %v, want ErrUserNotFound", err)
	}
}
