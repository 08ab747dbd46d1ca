package handlers

import (
	"net/http"

	"campaignkit/internal/domain/jsoncfg"
	"campaignkit/internal/middleware"
)

// Content generates the marketing kit for one product signal. New content
// resets the image batches of the workspace.
func (a *App) Content(w http.ResponseWriter, r *http.Request) {
	var req jsoncfg.SourcePayload
	if !a.decode(w, r, &req) {
		return
	}
	signal, err := req.Signal(middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Service.RequestContent(r.Context(), workspaceOf(r), signal)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}
