package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"campaignkit/internal/campaign"
	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
	"campaignkit/internal/middleware"
)

const (
	// WorkspaceHeader scopes content and batches to one client workspace.
	WorkspaceHeader  = "X-Workspace-ID"
	defaultWorkspace = "default"
	maxBodyBytes     = 20 << 20
)

type App struct {
	Service *campaign.Service
	Logger  *infra.Logger
}

func NewApp(svc *campaign.Service, logger *infra.Logger) *App {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &App{Service: svc, Logger: logger}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// fail maps a domain error onto the HTTP error envelope.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrMalformedResponse):
		status, code = http.StatusUnprocessableEntity, "malformed_response"
	case errors.Is(err, domain.ErrProviderFailure):
		status, code = http.StatusBadGateway, "provider_failure"
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Str("path", r.URL.Path).Msg("http: unhandled error")
		message = "internal error"
	}
	a.error(w, status, code, message)
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func workspaceOf(r *http.Request) string {
	if ws := strings.TrimSpace(r.Header.Get(WorkspaceHeader)); ws != "" {
		return ws
	}
	return defaultWorkspace
}
