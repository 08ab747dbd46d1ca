package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"campaignkit/internal/domain"
	"campaignkit/internal/infra"
)

// ErrShortBatch marks slots a batch-capable backend did not return.
var ErrShortBatch = errors.New("backend returned fewer images than requested")

// BatchRequest asks a batch-capable backend for Count images in one call.
type BatchRequest struct {
	Prompt      string
	Count       int
	AspectRatio domain.AspectRatio
	RequestID   string
}

// SingleRequest asks a single-image backend for one image. Index is the
// external slot index the result belongs to.
type SingleRequest struct {
	Prompt      string
	Reference   *domain.InlineImage
	Attachments []domain.Attachment
	AspectRatio domain.AspectRatio
	Index       int
	RequestID   string
}

// BatchBackend returns up to Count images in request order. A nil entry is a
// per-item failure.
type BatchBackend interface {
	GenerateBatch(ctx context.Context, req BatchRequest) ([]*domain.InlineImage, error)
}

// SingleBackend returns zero or one image per call.
type SingleBackend interface {
	GenerateOne(ctx context.Context, req SingleRequest) (*domain.InlineImage, error)
}

// Target places a batch within a workspace. BaseIndex offsets slot indices
// for single-slot retries.
type Target struct {
	Workspace string
	Field     string
	ParentID  string
	BaseIndex int
}

// Options configures an Orchestrator.
type Options struct {
	Batch  BatchBackend
	Single SingleBackend
	// Workers bounds concurrent single-image calls per batch.
	Workers int
	// DispatchPerSecond paces single-image dispatch; zero disables pacing.
	DispatchPerSecond float64
	// Timeout bounds one generation run; zero means no limit.
	Timeout time.Duration
	Logger  *infra.Logger
}

// Orchestrator turns a GenerationJob into a Batch.
type Orchestrator struct {
	batch   BatchBackend
	single  SingleBackend
	workers int
	pacer   *rate.Limiter
	timeout time.Duration
	logger  *infra.Logger
}

const defaultWorkers = 4

// NewOrchestrator builds an orchestrator. At least one backend is required.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Batch == nil && opts.Single == nil {
		return nil, errors.New("assets: at least one backend is required")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	var pacer *rate.Limiter
	if opts.DispatchPerSecond > 0 {
		pacer = rate.NewLimiter(rate.Limit(opts.DispatchPerSecond), 1)
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Orchestrator{
		batch:   opts.Batch,
		single:  opts.Single,
		workers: workers,
		pacer:   pacer,
		timeout: opts.Timeout,
		logger:  logger,
	}, nil
}

// GenerateBatch runs job to completion and returns the batch once every slot
// has settled. Only invalid input fails the call; per-slot failures are
// recorded on the slots.
func (o *Orchestrator) GenerateBatch(ctx context.Context, job domain.GenerationJob) (*Batch, error) {
	b, err := o.launch(ctx, Target{}, job)
	if err != nil {
		return nil, err
	}
	if err := b.Wait(ctx); err != nil {
		return b, err
	}
	return b, nil
}

// Start validates job, declares a new batch and generates it in the
// background. The returned batch can be snapshotted while it fills in.
func (o *Orchestrator) Start(ctx context.Context, target Target, job domain.GenerationJob) (*Batch, error) {
	return o.launch(context.WithoutCancel(ctx), target, job)
}

func (o *Orchestrator) launch(ctx context.Context, target Target, job domain.GenerationJob) (*Batch, error) {
	job.Normalize()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if err := o.supports(job.BackendMode); err != nil {
		return nil, err
	}
	b := newBatch(target, job)
	identity := b.Identity()
	go o.run(ctx, b, identity)
	return b, nil
}

func (o *Orchestrator) supports(mode domain.BackendMode) error {
	switch {
	case mode == domain.BackendBatchCapable && o.batch == nil:
		return fmt.Errorf("%w: no batch-capable backend configured", domain.ErrInvalidInput)
	case mode == domain.BackendSingleOnly && o.single == nil:
		return fmt.Errorf("%w: no single-image backend configured", domain.ErrInvalidInput)
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, b *Batch, identity string) {
	defer b.finish()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	start := time.Now()
	switch b.job.BackendMode {
	case domain.BackendBatchCapable:
		o.runBatch(ctx, b, identity)
	default:
		o.runSingle(ctx, b, identity)
	}
	snap := b.Snapshot()
	o.logger.Info().
		Str("batch_id", b.id).
		Str("field", b.field).
		Str("mode", string(b.job.BackendMode)).
		Int("count", b.Len()).
		Int("succeeded", snap.Succeeded).
		Int("failed", snap.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("assets: batch settled")
}

func (o *Orchestrator) runBatch(ctx context.Context, b *Batch, identity string) {
	count := b.Len()
	for pos := 0; pos < count; pos++ {
		b.dispatch(identity, pos)
	}
	images, err := o.callBatch(ctx, BatchRequest{
		Prompt:      b.job.Prompt,
		Count:       count,
		AspectRatio: b.job.AspectRatio,
		RequestID:   b.id,
	})
	if err != nil {
		o.logger.Warn().Err(err).Str("batch_id", b.id).Msg("assets: batch call failed")
		cause := fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		for pos := 0; pos < count; pos++ {
			b.settle(identity, pos, nil, cause)
		}
		return
	}
	if len(images) < count {
		o.logger.Warn().
			Str("batch_id", b.id).
			Int("requested", count).
			Int("returned", len(images)).
			Msg("assets: short batch")
	}
	for pos := 0; pos < count; pos++ {
		var (
			img   *domain.InlineImage
			cause error
		)
		if pos < len(images) {
			img = images[pos]
		} else {
			cause = ErrShortBatch
		}
		if !b.settle(identity, pos, img, cause) {
			o.logger.Debug().Str("batch_id", b.id).Int("slot", b.baseIndex+pos).Msg("assets: discarded stale result")
		}
	}
}

func (o *Orchestrator) runSingle(ctx context.Context, b *Batch, identity string) {
	var g errgroup.Group
	g.SetLimit(o.workers)
	for pos := 0; pos < b.Len(); pos++ {
		g.Go(func() error {
			o.runSlot(ctx, b, identity, pos)
			return nil
		})
	}
	_ = g.Wait()
}

func (o *Orchestrator) runSlot(ctx context.Context, b *Batch, identity string, pos int) {
	index := b.baseIndex + pos
	if o.pacer != nil {
		if err := o.pacer.Wait(ctx); err != nil {
			if b.dispatch(identity, pos) {
				b.settle(identity, pos, nil, err)
			}
			return
		}
	}
	if !b.dispatch(identity, pos) {
		return
	}
	img, err := o.callSingle(ctx, SingleRequest{
		Prompt:      b.job.Prompt,
		Reference:   b.job.ReferenceImage,
		Attachments: b.job.Attachments,
		AspectRatio: b.job.AspectRatio,
		Index:       index,
		RequestID:   b.id,
	})
	if err != nil {
		o.logger.Warn().Err(err).Str("batch_id", b.id).Int("slot", index).Msg("assets: slot generation failed")
	}
	if !b.settle(identity, pos, img, err) {
		o.logger.Debug().Str("batch_id", b.id).Int("slot", index).Msg("assets: discarded stale result")
	}
}

func (o *Orchestrator) callBatch(ctx context.Context, req BatchRequest) (images []*domain.InlineImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()
	return o.batch.GenerateBatch(ctx, req)
}

func (o *Orchestrator) callSingle(ctx context.Context, req SingleRequest) (img *domain.InlineImage, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: backend panic: %v", domain.ErrProviderFailure, r)
		}
	}()
	return o.single.GenerateOne(ctx, req)
}
