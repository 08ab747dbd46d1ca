package assets

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"campaignkit/internal/domain"
)

// Batch is the ordered set of slots produced by one generation action. Writes
// carry the identity that was current when they were dispatched; a reset
// rotates the identity so late results from the old run are dropped.
type Batch struct {
	id        string
	workspace string
	field     string
	parentID  string
	baseIndex int
	job       domain.GenerationJob
	createdAt time.Time

	mu       sync.RWMutex
	identity string
	slots    []Slot

	done     chan struct{}
	doneOnce sync.Once
}

// Snapshot is a read-only copy of a batch at one instant.
type Snapshot struct {
	ID          string             `json:"id"`
	Workspace   string             `json:"workspace,omitempty"`
	Field       string             `json:"field,omitempty"`
	ParentID    string             `json:"parent_id,omitempty"`
	Identity    string             `json:"identity"`
	Mode        domain.BackendMode `json:"backend_mode"`
	AspectRatio domain.AspectRatio `json:"aspect_ratio"`
	Slots       []Slot             `json:"slots"`
	Idle        int                `json:"idle"`
	Loading     int                `json:"loading"`
	Succeeded   int                `json:"succeeded"`
	Failed      int                `json:"failed"`
	Complete    bool               `json:"complete"`
	CreatedAt   time.Time          `json:"created_at"`
}

// PartialFailure reports whether some, but not all, slots failed. Partial
// failures are never returned as errors.
func (s Snapshot) PartialFailure() bool {
	return s.Failed > 0 && s.Succeeded > 0
}

func newBatch(target Target, job domain.GenerationJob) *Batch {
	b := &Batch{
		id:        uuid.NewString(),
		workspace: target.Workspace,
		field:     target.Field,
		parentID:  target.ParentID,
		baseIndex: target.BaseIndex,
		job:       job,
		createdAt: time.Now().UTC(),
		identity:  uuid.NewString(),
		slots:     make([]Slot, job.Count),
		done:      make(chan struct{}),
	}
	for i := range b.slots {
		b.slots[i] = Slot{Index: target.BaseIndex + i, State: SlotIdle}
	}
	return b
}

func (b *Batch) ID() string        { return b.id }
func (b *Batch) Workspace() string { return b.workspace }
func (b *Batch) Field() string     { return b.field }
func (b *Batch) ParentID() string  { return b.parentID }
func (b *Batch) Len() int          { return len(b.slots) }

// Job returns the job the batch was created from.
func (b *Batch) Job() domain.GenerationJob { return b.job }

// Identity returns the token writes must present to land in this batch.
func (b *Batch) Identity() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.identity
}

// Snapshot copies the current state of every slot.
func (b *Batch) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap := Snapshot{
		ID:          b.id,
		Workspace:   b.workspace,
		Field:       b.field,
		ParentID:    b.parentID,
		Identity:    b.identity,
		Mode:        b.job.BackendMode,
		AspectRatio: b.job.AspectRatio,
		Slots:       make([]Slot, len(b.slots)),
		CreatedAt:   b.createdAt,
	}
	for i, s := range b.slots {
		snap.Slots[i] = s.clone()
		switch s.State {
		case SlotIdle:
			snap.Idle++
		case SlotLoading:
			snap.Loading++
		case SlotSuccess:
			snap.Succeeded++
		case SlotError:
			snap.Failed++
		}
	}
	snap.Complete = len(b.slots) > 0 && snap.Succeeded+snap.Failed == len(b.slots)
	return snap
}

// Slot returns a copy of the slot at external index idx.
func (b *Batch) Slot(idx int) (Slot, bool) {
	pos := idx - b.baseIndex
	b.mu.RLock()
	defer b.mu.RUnlock()
	if pos < 0 || pos >= len(b.slots) {
		return Slot{}, false
	}
	return b.slots[pos].clone(), true
}

// Reset returns every slot to idle in one step and rotates the identity. It
// returns the new identity.
func (b *Batch) Reset() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.identity = uuid.NewString()
	for i := range b.slots {
		b.slots[i].reset()
	}
	return b.identity
}

// Done is closed once the generation run launched for the batch returns.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the run finishes or ctx is done.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Batch) finish() {
	b.doneOnce.Do(func() { close(b.done) })
}

// dispatch moves slot pos to loading when identity is still current.
func (b *Batch) dispatch(identity string, pos int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identity != b.identity || pos < 0 || pos >= len(b.slots) {
		return false
	}
	return b.slots[pos].dispatch() == nil
}

// settle writes a result into slot pos. Results carrying a stale identity
// are discarded and reported as false.
func (b *Batch) settle(identity string, pos int, img *domain.InlineImage, cause error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if identity != b.identity || pos < 0 || pos >= len(b.slots) {
		return false
	}
	return b.slots[pos].settle(img, cause) == nil
}
