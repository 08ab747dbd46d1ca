package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDocsPageDescribesEmbeddedDocument(t *testing.T) {
	page, err := docsPageFrom(openAPISpec)
	if err != nil {
		t.Fatalf("docsPageFrom returned error: %v", err)
	}
	if page.Title != "Campaign Kit API" || page.SpecURL != "/v1/openapi.json" {
		t.Fatalf("page = %+v", page)
	}

	rec := httptest.NewRecorder()
	NewApp(nil, nil).OpenAPIDocs(rec, httptest.NewRequest(http.MethodGet, "/v1/docs", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`<redoc spec-url="/v1/openapi.json">`,
		`<a href="/v1/openapi.json">`,
		"POST /v1/batches/{id}/slots/{index}/retry",
		"GET /v1/catalog",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("docs page lacks %q", want)
		}
	}
	if strings.Contains(body, "PARAMETERS") {
		t.Fatalf("docs page lists non-method keys")
	}
}

func TestDocsPageRejectsInvalidDocument(t *testing.T) {
	if _, err := docsPageFrom([]byte("{")); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestHealthWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	NewApp(nil, nil).Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	var view healthView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || view.Status != "ok" || view.Categories != 29 || view.Batches != 0 {
		t.Fatalf("health = %d %+v", rec.Code, view)
	}
}
