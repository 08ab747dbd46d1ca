package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"campaignkit/internal/domain"
)

func TestFailMapsDomainErrors(t *testing.T) {
	app := NewApp(nil, nil)
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: count", domain.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("%w: batch x", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: slot 0 is loading", domain.ErrInvalidTransition), http.StatusConflict, "invalid_transition"},
		{fmt.Errorf("%w: not json", domain.ErrMalformedResponse), http.StatusUnprocessableEntity, "malformed_response"},
		{fmt.Errorf("%w: timeout", domain.ErrProviderFailure), http.StatusBadGateway, "provider_failure"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range tests {
		rec := httptest.NewRecorder()
		app.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if rec.Code != tc.status || body.Error.Code != tc.code {
			t.Fatalf("%v: status=%d code=%q", tc.err, rec.Code, body.Error.Code)
		}
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	NewApp(nil, nil).fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("dsn=secret"))
	var body errorBody
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error.Message != "internal error" {
		t.Fatalf("message = %q", body.Error.Message)
	}
}

func TestWorkspaceOf(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := workspaceOf(req); got != defaultWorkspace {
		t.Fatalf("workspaceOf() = %q", got)
	}
	req.Header.Set(WorkspaceHeader, " shop-9 ")
	if got := workspaceOf(req); got != "shop-9" {
		t.Fatalf("workspaceOf() = %q", got)
	}
}
