// Package campaign is the workspace entry point: it turns product signals into
// parsed marketing content and keeps the image batches of each workspace.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campaignkit/internal/assets"
	"campaignkit/internal/content"
	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
	"campaignkit/internal/presets"
	"campaignkit/internal/providers/textgen"
	zipkit "campaignkit/pkg/zip"
)

// DefaultField is used when an asset request does not name a field.
const DefaultField = "assets"

type batchStarter interface {
	Start(ctx context.Context, target assets.Target, job domain.GenerationJob) (*assets.Batch, error)
}

// Options configures a Service.
type Options struct {
	Writer        textgen.Writer
	Orchestrator  batchStarter
	Registry      *assets.Registry
	DefaultLocale string
	Logger        *infra.Logger
}

// Service implements the workspace operations.
type Service struct {
	writer        textgen.Writer
	orchestrator  batchStarter
	registry      *assets.Registry
	defaultLocale string
	logger        *infra.Logger
}

// ContentResult is the parsed content of one request plus provider details.
// ResetBatches is how many live asset batches the new content invalidated.
type ContentResult struct {
	RequestID    string                `json:"request_id"`
	Content      content.ParsedContent `json:"content"`
	Provider     string                `json:"provider"`
	Metadata     map[string]string     `json:"metadata,omitempty"`
	ResetBatches int                   `json:"reset_batches"`
}

// NewService wires the collaborators. A nil registry gets a default one.
func NewService(opts Options) (*Service, error) {
	if opts.Writer == nil {
		return nil, errors.New("campaign: text writer is required")
	}
	if opts.Orchestrator == nil {
		return nil, errors.New("campaign: asset orchestrator is required")
	}
	registry := opts.Registry
	if registry == nil {
		registry = assets.NewRegistry(0)
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Service{
		writer:        opts.Writer,
		orchestrator:  opts.Orchestrator,
		registry:      registry,
		defaultLocale: firstNonEmpty(opts.DefaultLocale, textgen.DefaultLocale),
		logger:        logger,
	}, nil
}

// RequestContent generates and parses the content kit for signal. Successful
// content resets every live asset batch of the workspace, since images made
// for the previous product no longer apply.
func (s *Service) RequestContent(ctx context.Context, workspace string, signal domain.SourceSignal) (*ContentResult, error) {
	if err := signal.Validate(); err != nil {
		return nil, err
	}
	signal.Locale = firstNonEmpty(signal.Locale, s.defaultLocale)
	requestID := uuid.NewString()
	start := time.Now()

	res, err := s.writer.Write(ctx, textgen.Request{Signal: signal, Locale: signal.Locale, RequestID: requestID})
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Str("source", string(signal.Kind)).Msg("campaign: content generation failed")
		return nil, err
	}
	parsed, err := content.Parse(res.Raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Str("provider", res.Provider).Msg("campaign: unparseable content")
		return nil, err
	}
	parsed = parsed.WithCitations(res.Citations)

	reset := s.registry.ResetWorkspace(workspace)
	s.logger.Info().
		Str("request_id", requestID).
		Str("workspace", workspace).
		Str("source", string(signal.Kind)).
		Str("subject", signal.Subject()).
		Str("provider", res.Provider).
		Int("items", parsed.Total()).
		Int("reset_batches", reset).
		Dur("elapsed", time.Since(start)).
		Msg("campaign: content generated")

	return &ContentResult{
		RequestID:    requestID,
		Content:      parsed,
		Provider:     res.Provider,
		Metadata:     res.Metadata,
		ResetBatches: reset,
	}, nil
}

// RequestAssetBatch starts a new batch for (workspace, field). The new batch
// becomes current for the field; the one it replaces is left untouched and
// stays readable by id until evicted.
func (s *Service) RequestAssetBatch(ctx context.Context, workspace, field string, job domain.GenerationJob) (*assets.Batch, error) {
	field = firstNonEmpty(field, DefaultField)
	b, err := s.orchestrator.Start(ctx, assets.Target{Workspace: workspace, Field: field}, job)
	if err != nil {
		return nil, err
	}
	if prev := s.registry.Put(b); prev != nil {
		s.logger.Debug().Str("batch_id", b.ID()).Str("superseded", prev.ID()).Str("field", field).Msg("campaign: batch superseded")
	}
	return b, nil
}

// RequestPreset builds the job for a named preset and starts it. Product
// media batches are tracked per media kind so each edit keeps its own slots.
func (s *Service) RequestPreset(ctx context.Context, workspace string, req presets.Request) (*assets.Batch, error) {
	job, err := presets.Build(req)
	if err != nil {
		return nil, err
	}
	field := string(req.Kind)
	if req.Kind == presets.KindProductMedia {
		field += ":" + strings.ToLower(strings.TrimSpace(string(req.Media)))
	}
	return s.RequestAssetBatch(ctx, workspace, field, job)
}

// RetainedBatches reports how many batches are still addressable by id.
func (s *Service) RetainedBatches() int {
	return s.registry.Len()
}

// Batch returns the batch with id.
func (s *Service) Batch(id string) (*assets.Batch, error) {
	b, ok := s.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: batch %s", domain.ErrNotFound, id)
	}
	return b, nil
}

// ResetBatch idles every slot of the batch and rotates its identity so
// in-flight results are discarded.
func (s *Service) ResetBatch(id string) (assets.Snapshot, error) {
	b, err := s.Batch(id)
	if err != nil {
		return assets.Snapshot{}, err
	}
	b.Reset()
	return b.Snapshot(), nil
}

// RetrySlot regenerates one settled slot as a new one-slot batch that keeps
// the slot's external index. The parent batch is not modified.
func (s *Service) RetrySlot(ctx context.Context, id string, index int) (*assets.Batch, error) {
	parent, err := s.Batch(id)
	if err != nil {
		return nil, err
	}
	slot, ok := parent.Slot(index)
	if !ok {
		return nil, fmt.Errorf("%w: batch %s has no slot %d", domain.ErrNotFound, id, index)
	}
	if !slot.State.Terminal() {
		return nil, fmt.Errorf("%w: slot %d is %s", domain.ErrInvalidTransition, index, slot.State)
	}
	job := parent.Job()
	job.Count = 1
	b, err := s.orchestrator.Start(ctx, assets.Target{
		Workspace: parent.Workspace(),
		Field:     parent.Field(),
		ParentID:  parent.ID(),
		BaseIndex: index,
	}, job)
	if err != nil {
		return nil, err
	}
	s.registry.Put(b)
	return b, nil
}

// Archive zips every successful slot of the batch. Files are named
// "<field>-<index><ext>".
func (s *Service) Archive(id string) ([]byte, error) {
	b, err := s.Batch(id)
	if err != nil {
		return nil, err
	}
	snap := b.Snapshot()
	name := strings.ReplaceAll(firstNonEmpty(snap.Field, "batch"), ":", "-")
	files := make([]zipkit.Asset, 0, snap.Succeeded)
	for _, slot := range snap.Slots {
		if slot.State != assets.SlotSuccess || slot.Payload.Empty() {
			continue
		}
		files = append(files, zipkit.Asset{
			Filename: fmt.Sprintf("%s-%d%s", name, slot.Index, zipkit.Extension(slot.Payload.MIMEType)),
			MIME:     slot.Payload.MIMEType,
			Data:     slot.Payload.Data,
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: batch %s has no successful images", domain.ErrNotFound, id)
	}
	return zipkit.ArchiveAssets(files, snap.CreatedAt)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
