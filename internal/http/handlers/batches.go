package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campaignkit/internal/assets"
	"campaignkit/internal/domain"
	"campaignkit/internal/domain/jsoncfg"
	"campaignkit/internal/presets"
)

type imageView struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type slotView struct {
	Index int              `json:"index"`
	State assets.SlotState `json:"state"`
	Error string           `json:"error,omitempty"`
	Image *imageView       `json:"image,omitempty"`
}

type batchView struct {
	assets.Snapshot
	Slots          []slotView `json:"slots"`
	PartialFailure bool       `json:"partial_failure"`
}

func newBatchView(snap assets.Snapshot) batchView {
	view := batchView{Snapshot: snap, Slots: make([]slotView, len(snap.Slots)), PartialFailure: snap.PartialFailure()}
	for i, s := range snap.Slots {
		view.Slots[i] = slotView{Index: s.Index, State: s.State, Error: s.Error}
		if s.State == assets.SlotSuccess && !s.Payload.Empty() {
			view.Slots[i].Image = &imageView{MIMEType: s.Payload.MIMEType, Data: s.Payload.Base64()}
		}
	}
	return view
}

// CreateBatch starts a free-form batch from an asset brief.
func (a *App) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var brief jsoncfg.AssetBrief
	if !a.decode(w, r, &brief) {
		return
	}
	job, err := brief.Job()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.Service.RequestAssetBatch(r.Context(), workspaceOf(r), brief.Field, job)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newBatchView(b.Snapshot()))
}

type notificationPayload struct {
	presets.NotificationSpec
	Background *jsoncfg.ImagePayload `json:"background"`
	AppIcon    *jsoncfg.ImagePayload `json:"app_icon"`
}

type presetPayload struct {
	Prompt       string                `json:"prompt"`
	Style        string                `json:"style"`
	Media        presets.MediaKind     `json:"media"`
	Count        int                   `json:"count"`
	Reference    *jsoncfg.ImagePayload `json:"reference"`
	Notification *notificationPayload  `json:"notification"`
}

func (p presetPayload) request(kind presets.Kind) (presets.Request, error) {
	req := presets.Request{Kind: kind, Prompt: p.Prompt, Style: p.Style, Media: p.Media, Count: p.Count}
	ref, err := p.Reference.Decode()
	if err != nil {
		return presets.Request{}, err
	}
	req.Reference = ref
	if p.Notification != nil {
		spec := p.Notification.NotificationSpec
		if spec.Background, err = p.Notification.Background.Decode(); err != nil {
			return presets.Request{}, err
		}
		if spec.AppIcon, err = p.Notification.AppIcon.Decode(); err != nil {
			return presets.Request{}, err
		}
		req.Notification = &spec
	}
	return req, nil
}

// CreatePreset starts a batch for one named preset.
func (a *App) CreatePreset(w http.ResponseWriter, r *http.Request) {
	kind, ok := presets.ParseKind(chi.URLParam(r, "preset"))
	if !ok {
		a.fail(w, r, fmt.Errorf("%w: unknown preset %q", domain.ErrNotFound, chi.URLParam(r, "preset")))
		return
	}
	var payload presetPayload
	if !a.decode(w, r, &payload) {
		return
	}
	req, err := payload.request(kind)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	b, err := a.Service.RequestPreset(r.Context(), workspaceOf(r), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newBatchView(b.Snapshot()))
}

func (a *App) GetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := a.Service.Batch(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newBatchView(b.Snapshot()))
}

func (a *App) ResetBatch(w http.ResponseWriter, r *http.Request) {
	snap, err := a.Service.ResetBatch(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newBatchView(snap))
}

// RetrySlot regenerates one settled slot; the response is the new one-slot
// batch.
func (a *App) RetrySlot(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "slot index must be a non-negative integer")
		return
	}
	b, err := a.Service.RetrySlot(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, newBatchView(b.Snapshot()))
}

// ArchiveBatch downloads the successful images of a batch as a zip.
func (a *App) ArchiveBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	archive, err := a.Service.Archive(id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=batch-%s.zip", id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
