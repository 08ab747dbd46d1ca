package handlers

import (
	"net/http"

	"campaignkit/internal/content"
)

type healthView struct {
	Status     string `json:"status"`
	Categories int    `json:"categories"`
	Batches    int    `json:"batches"`
}

// Health reports liveness together with the size of the content catalogue and
// the number of batches the service still holds in memory.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	view := healthView{Status: "ok", Categories: len(content.Categories())}
	if a.Service != nil {
		view.Batches = a.Service.RetainedBatches()
	}
	a.json(w, http.StatusOK, view)
}
