package handlers

import (
	"net/http"

	"campaignkit/internal/content"
	"campaignkit/internal/presets"
)

type categoryView struct {
	ID     content.CategoryID `json:"id"`
	Title  string             `json:"title"`
	Shape  content.Shape      `json:"shape"`
	Group  content.Group      `json:"group"`
	Count  int                `json:"count"`
	Marker string             `json:"marker"`
}

// Catalog lists the content categories in generation order.
func (a *App) Catalog(w http.ResponseWriter, r *http.Request) {
	cats := content.Categories()
	items := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		items = append(items, categoryView{
			ID:     c.ID,
			Title:  c.Title,
			Shape:  c.Shape,
			Group:  c.Group,
			Count:  c.Count,
			Marker: c.Marker(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) Presets(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": presets.List()})
}
