package assets

import "sync"

type fieldKey struct {
	workspace string
	field     string
}

// Registry keeps recent batches addressable by id and tracks the current
// batch per workspace field. It holds at most limit batches; the oldest are
// evicted first.
type Registry struct {
	mu      sync.Mutex
	limit   int
	byID    map[string]*Batch
	order   []string
	current map[fieldKey]string
}

// NewRegistry returns a registry retaining up to limit batches.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = 256
	}
	return &Registry{
		limit:   limit,
		byID:    make(map[string]*Batch),
		current: make(map[fieldKey]string),
	}
}

// Put stores b. A top-level batch becomes the current batch for its field and
// the batch it replaces is returned; retries never replace their parent.
func (r *Registry) Put(b *Batch) *Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.id] = b
	r.order = append(r.order, b.id)

	var superseded *Batch
	if b.parentID == "" && b.field != "" {
		key := fieldKey{workspace: b.workspace, field: b.field}
		if prev, ok := r.current[key]; ok {
			superseded = r.byID[prev]
		}
		r.current[key] = b.id
	}
	r.evictLocked()
	return superseded
}

// Get returns the batch with id.
func (r *Registry) Get(id string) (*Batch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byID[id]
	return b, ok
}

// Current returns the live batch for a workspace field.
func (r *Registry) Current(workspace, field string) (*Batch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.current[fieldKey{workspace: workspace, field: field}]
	if !ok {
		return nil, false
	}
	b, ok := r.byID[id]
	return b, ok
}

// ResetWorkspace resets every current batch in workspace and returns how
// many were reset.
func (r *Registry) ResetWorkspace(workspace string) int {
	r.mu.Lock()
	batches := make([]*Batch, 0)
	for key, id := range r.current {
		if key.workspace != workspace {
			continue
		}
		if b, ok := r.byID[id]; ok {
			batches = append(batches, b)
		}
	}
	r.mu.Unlock()

	for _, b := range batches {
		b.Reset()
	}
	return len(batches)
}

// Len returns the number of retained batches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Registry) evictLocked() {
	for len(r.order) > r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		b, ok := r.byID[oldest]
		if !ok {
			continue
		}
		delete(r.byID, oldest)
		key := fieldKey{workspace: b.workspace, field: b.field}
		if r.current[key] == oldest {
			delete(r.current, key)
		}
	}
}
