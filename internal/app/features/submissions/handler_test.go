package submissions_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/studytrack/internal/app/features/submissions"
	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"github.com/dalemusser/studytrack/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*submissions.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	store, err := storage.NewLocal(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: "/files"})
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	handler := submissions.NewHandler(db, store, logger, respond.NewErrorLogger(logger))
	return handler, testutil.NewFixtures(t, db)
}

// multipartBody builds a submission form with an optional attachment.
func multipartBody(t *testing.T, taskID, content string, filename string, fileBody []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("taskId", taskID); err != nil {
		t.Fatalf("write taskId: %v", err)
	}
	if err := mw.WriteField("content", content); err != nil {
		t.Fatalf("write content: %v", err)
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(fileBody); err != nil {
			t.Fatalf("write file body: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandleCreateSubmission(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))

	body, contentType := multipartBody(t, task.ID.Hex(), "my answers", "", nil)
	req := testutil.NewAuthenticatedRequest("POST", "/submissions", body,
		testutil.AsUser(student.ID, student.Name, student.Email, "student", &batch.ID))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleCreateSubmission(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var got struct {
		Content    string `json:"content"`
		IsReviewed bool   `json:"is_reviewed"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.Content != "my answers" || got.IsReviewed {
		t.Errorf("submission: got %+v", got)
	}
}

func TestHandleCreateSubmission_WithAttachment(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))

	body, contentType := multipartBody(t, task.ID.Hex(), "see attached", "homework.pdf", []byte("%PDF-1.4 fake"))
	req := testutil.NewAuthenticatedRequest("POST", "/submissions", body,
		testutil.AsUser(student.ID, student.Name, student.Email, "student", &batch.ID))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleCreateSubmission(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var got struct {
		FilePath string `json:"file_path"`
		FileName string `json:"file_name"`
		FileSize int64  `json:"file_size"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if got.FilePath == "" || got.FileName != "homework.pdf" || got.FileSize == 0 {
		t.Errorf("attachment metadata: got %+v", got)
	}
}

func TestHandleCreateSubmission_Duplicate(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))
	fixtures.CreateSubmission(ctx, student.ID, task.ID, false, 0)

	body, contentType := multipartBody(t, task.ID.Hex(), "second try", "", nil)
	req := testutil.NewAuthenticatedRequest("POST", "/submissions", body,
		testutil.AsUser(student.ID, student.Name, student.Email, "student", &batch.ID))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleCreateSubmission(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleCreateSubmission_TaskNotFound(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := fixtures.CreateStudent(ctx)

	body, contentType := multipartBody(t, primitive.NewObjectID().Hex(), "orphan", "", nil)
	req := testutil.NewAuthenticatedRequest("POST", "/submissions", body,
		testutil.AsUser(student.ID, student.Name, student.Email, "student", nil))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.HandleCreateSubmission(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleReviewSubmission(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))
	sub := fixtures.CreateSubmission(ctx, student.ID, task.ID, false, 0)

	body := `{"feedback":"Good work","stars":4}`
	req := testutil.NewAuthenticatedRequest("PUT", "/submissions/"+sub.ID.Hex()+"/review", strings.NewReader(body),
		testutil.AsUser(tutor.ID, tutor.Name, tutor.Email, "tutor", nil))
	req = testutil.WithChiURLParam(req, "id", sub.ID.Hex())
	rec := httptest.NewRecorder()

	handler.HandleReviewSubmission(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got struct {
		IsReviewed bool   `json:"is_reviewed"`
		Feedback   string `json:"feedback"`
		StarsGiven int    `json:"stars_given"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !got.IsReviewed || got.Feedback != "Good work" || got.StarsGiven != 4 {
		t.Errorf("review: got %+v", got)
	}

	// Stars are credited to the student.
	var u struct {
		Stars int `bson:"stars"`
	}
	if err := fixtures.DB().Collection("users").
		FindOne(ctx, bson.M{"_id": student.ID}).Decode(&u); err != nil {
		t.Fatalf("load student: %v", err)
	}
	if u.Stars != 4 {
		t.Errorf("student stars: got %d, want 4", u.Stars)
	}
}

func TestHandleReviewSubmission_AlreadyReviewed(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))
	sub := fixtures.CreateSubmission(ctx, student.ID, task.ID, true, 3)

	body := `{"feedback":"Again","stars":5}`
	req := testutil.NewAuthenticatedRequest("PUT", "/submissions/"+sub.ID.Hex()+"/review", strings.NewReader(body),
		testutil.AsUser(tutor.ID, tutor.Name, tutor.Email, "tutor", nil))
	req = testutil.WithChiURLParam(req, "id", sub.ID.Hex())
	rec := httptest.NewRecorder()

	handler.HandleReviewSubmission(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleReviewSubmission_StarsOutOfRange(t *testing.T) {
	handler, _ := newTestHandler(t)

	id := primitive.NewObjectID().Hex()
	body := `{"feedback":"Too generous","stars":6}`
	req := testutil.NewAuthenticatedRequest("PUT", "/submissions/"+id+"/review", strings.NewReader(body),
		testutil.TutorUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := httptest.NewRecorder()

	handler.HandleReviewSubmission(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestServeTutorSubmissions(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	s1 := fixtures.CreateStudent(ctx)
	outsider := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{s1.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))
	fixtures.CreateSubmission(ctx, s1.ID, task.ID, false, 0)
	fixtures.CreateSubmission(ctx, outsider.ID, task.ID, false, 0)

	req := testutil.NewAuthenticatedRequest("GET", "/submissions/tutor", nil,
		testutil.AsUser(tutor.ID, tutor.Name, tutor.Email, "tutor", nil))
	rec := httptest.NewRecorder()

	handler.ServeTutorSubmissions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var got []struct {
		StudentID string `json:"student_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(got) != 1 || got[0].StudentID != s1.ID.Hex() {
		t.Errorf("tutor view: got %+v", got)
	}
}

func TestServeSubmission_StudentOwnOnly(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	owner := fixtures.CreateStudent(ctx)
	other := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{owner.ID, other.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))
	sub := fixtures.CreateSubmission(ctx, owner.ID, task.ID, false, 0)

	req := testutil.NewAuthenticatedRequest("GET", "/submissions/"+sub.ID.Hex(), nil,
		testutil.AsUser(other.ID, other.Name, other.Email, "student", &batch.ID))
	req = testutil.WithChiURLParam(req, "id", sub.ID.Hex())
	rec := httptest.NewRecorder()

	handler.ServeSubmission(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestServeDownload_NoAttachment(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tutor := fixtures.CreateTutor(ctx)
	student := fixtures.CreateStudent(ctx)
	batch := fixtures.CreateBatch(ctx, "Batch A", &tutor.ID, []primitive.ObjectID{student.ID})
	roadmap := fixtures.CreateRoadmap(ctx, batch.ID, tutor.ID, "Algebra")
	task := fixtures.CreateTask(ctx, roadmap.ID, tutor.ID, "Worksheet", time.Now().Add(24*time.Hour))
	sub := fixtures.CreateSubmission(ctx, student.ID, task.ID, false, 0)

	req := testutil.NewAuthenticatedRequest("GET", "/submissions/"+sub.ID.Hex()+"/download", nil,
		testutil.AsUser(student.ID, student.Name, student.Email, "student", &batch.ID))
	req = testutil.WithChiURLParam(req, "id", sub.ID.Hex())
	rec := httptest.NewRecorder()

	handler.ServeDownload(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
