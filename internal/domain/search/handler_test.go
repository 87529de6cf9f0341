package search

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/patientdesk/patientdesk/internal/domain/patient"
)

func doSearchRequest(h echo.HandlerFunc, method, body string) (*httptest.ResponseRecorder, searchResponse) {
	e := echo.New()
	req := httptest.NewRequest(method, "/patients/search", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = h(c)

	var resp searchResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestSearchHandler(t *testing.T) {
	llmStub := &stubLLM{response: `{"lastName": "Smith"}`}
	repo := &stubRepo{patients: []*patient.Patient{{ID: uuid.New(), LastName: "Smith"}}}
	h := NewHandler(newTestSearch(llmStub, repo))

	rec, resp := doSearchRequest(h.SearchPatients, http.MethodPost, `{"query": "patients named Smith"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if len(resp.Patients) != 1 {
		t.Errorf("expected 1 patient, got %d", len(resp.Patients))
	}
}

func TestSearchHandler_QueryTooShort(t *testing.T) {
	llmStub := &stubLLM{}
	h := NewHandler(newTestSearch(llmStub, &stubRepo{}))

	rec, resp := doSearchRequest(h.SearchPatients, http.MethodPost, `{"query": "abc"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if resp.Message != "Query must be at least 3 characters" {
		t.Errorf("got %q", resp.Message)
	}
	if llmStub.calls != 0 {
		t.Error("model must not be called for short queries")
	}
}

func TestSearchHandler_ParseFailure(t *testing.T) {
	llmStub := &stubLLM{response: "not json"}
	h := NewHandler(newTestSearch(llmStub, &stubRepo{}))

	rec, resp := doSearchRequest(h.SearchPatients, http.MethodPost, `{"query": "patients in Texas"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if resp.Message != "Failed to parse search query" {
		t.Errorf("got %q", resp.Message)
	}
}

func TestSearchHandler_StorageFailure(t *testing.T) {
	llmStub := &stubLLM{response: `{"lastName": "Smith"}`}
	repo := &stubRepo{searchErr: errors.New("connection refused")}
	h := NewHandler(newTestSearch(llmStub, repo))

	rec, resp := doSearchRequest(h.SearchPatients, http.MethodPost, `{"query": "patients named Smith"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	if resp.Message != "Error fetching patients" {
		t.Errorf("got %q", resp.Message)
	}
}

func TestSearchHandler_EmptyResultShape(t *testing.T) {
	llmStub := &stubLLM{response: `{"firstName": "Zelda"}`}
	h := NewHandler(newTestSearch(llmStub, &stubRepo{}))

	rec, _ := doSearchRequest(h.SearchPatients, http.MethodPost, `{"query": "anyone named Zelda"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if string(raw["patients"]) != "[]" {
		t.Errorf("patients should serialize as [], got %s", raw["patients"])
	}
}

func TestSearchHandler_MethodNotAllowed(t *testing.T) {
	h := NewHandler(newTestSearch(&stubLLM{}, &stubRepo{}))

	rec, resp := doSearchRequest(h.MethodNotAllowed, http.MethodGet, "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", rec.Code)
	}
	if resp.Message != "Method GET Not Allowed" {
		t.Errorf("got %q", resp.Message)
	}
	if allow := rec.Header().Get(echo.HeaderAllow); allow != http.MethodPost {
		t.Errorf("Allow header %q", allow)
	}
}
