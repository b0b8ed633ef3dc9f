package doubts_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studytrack/internal/app/features/doubts"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*doubts.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	handler := doubts.NewHandler(db, logger, respond.NewErrorLogger(logger))
	return handler, testutil.NewFixtures(t, db)
}

func TestHandleAskDoubt(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)

	body := `{"question":"How do I factor quadratics?"}`
	req := testutil.NewAuthenticatedRequest("POST", "/doubts", strings.NewReader(body),
		testutil.AsUser(student.ID, student.Name, student.Email, "student", nil))
	rec := httptest.NewRecorder()

	handler.HandleAskDoubt(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var got struct {
		Question   string `json:"question"`
		IsResolved bool   `json:"is_resolved"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.Question != "How do I factor quadratics?" || got.IsResolved {
		t.Errorf("doubt: got %+v", got)
	}
}

func TestHandleAskDoubt_MissingQuestion(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)

	req := testutil.NewAuthenticatedRequest("POST", "/doubts", strings.NewReader(`{}`),
		testutil.AsUser(student.ID, student.Name, student.Email, "student", nil))
	rec := httptest.NewRecorder()

	handler.HandleAskDoubt(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestServeTutorDoubts_OnlyOwnStudents(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	s1 := fixtures.CreateStudent(ctx)
	outsider := fixtures.CreateStudent(ctx)
	fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{s1.ID})
	fixtures.CreateDoubt(ctx, s1.ID, "From my student")
	fixtures.CreateDoubt(ctx, outsider.ID, "From a stranger")

	req := testutil.NewAuthenticatedRequest("GET", "/doubts/tutor", nil,
		testutil.AsUser(tutor.ID, tutor.Name, tutor.Email, "tutor", nil))
	rec := httptest.NewRecorder()

	handler.ServeTutorDoubts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got []struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(got) != 1 || got[0].Question != "From my student" {
		t.Errorf("tutor doubts: got %+v", got)
	}
}

func TestHandleReplyDoubt(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	doubt := fixtures.CreateDoubt(ctx, student.ID, "What is a derivative?")

	body := `{"reply":"The rate of change of a function."}`
	req := testutil.NewAuthenticatedRequest("PUT", "/doubts/"+doubt.ID.Hex()+"/reply", strings.NewReader(body),
		testutil.AsUser(tutor.ID, tutor.Name, tutor.Email, "tutor", nil))
	req = testutil.WithChiURLParam(req, "id", doubt.ID.Hex())
	rec := httptest.NewRecorder()

	handler.HandleReplyDoubt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got struct {
		Reply      string `json:"reply"`
		IsResolved bool   `json:"is_resolved"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !got.IsResolved || got.Reply == "" {
		t.Errorf("reply: got %+v", got)
	}
}

func TestHandleReplyDoubt_NotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	id := primitive.NewObjectID().Hex()
	body := `{"reply":"Into the void."}`
	req := testutil.NewAuthenticatedRequest("PUT", "/doubts/"+id+"/reply", strings.NewReader(body),
		testutil.TutorUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.HandleReplyDoubt(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
