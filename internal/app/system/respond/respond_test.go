package respond_test

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studytrack/internal/app/system/respond"
	"go.uber.org/zap"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.JSON(rec, 201, map[string]string{"name": "Batch A"})

	if rec.Code != 201 {
		t.Errorf("status: got %d, want 201", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type: got %q", ct)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["name"] != "Batch A" {
		t.Errorf("body: got %v", body)
	}
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.JSON(rec, 200, nil)

	if rec.Code != 200 {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.Error(rec, 404, "batch not found")

	if rec.Code != 404 {
		t.Errorf("status: got %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "batch not found" {
		t.Errorf("message: got %q", body["message"])
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	respond.NoContent(rec)

	if rec.Code != 204 {
		t.Errorf("status: got %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestServerError(t *testing.T) {
	el := respond.NewErrorLogger(zap.NewNop())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/batches", nil)
	el.ServerError(rec, req, errors.New("connection reset"), "create batch failed")

	if rec.Code != 500 {
		t.Errorf("status: got %d, want 500", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != "internal server error" {
		t.Errorf("message: got %q", body["message"])
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Error("error detail leaked to client")
	}
}

func TestNewErrorLogger_NilLogger(t *testing.T) {
	el := respond.NewErrorLogger(nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users", nil)
	el.ServerError(rec, req, errors.New("boom"), "list users failed")

	if rec.Code != 500 {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}
