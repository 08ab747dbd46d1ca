package assets

import (
	"testing"

	"campaignkit/internal/domain"
)

func settledBatch(target Target) *Batch {
	b := newBatch(target, domain.GenerationJob{Prompt: "x", Count: 2, BackendMode: domain.BackendBatchCapable})
	id := b.Identity()
	for i := 0; i < b.Len(); i++ {
		b.dispatch(id, i)
		b.settle(id, i, image("ok"), nil)
	}
	b.finish()
	return b
}

func TestRegistrySupersedesPerField(t *testing.T) {
	r := NewRegistry(10)
	first := settledBatch(Target{Workspace: "w", Field: "logos"})
	second := settledBatch(Target{Workspace: "w", Field: "logos"})
	other := settledBatch(Target{Workspace: "w", Field: "banners"})

	if prev := r.Put(first); prev != nil {
		t.Fatalf("first Put superseded %v", prev.ID())
	}
	r.Put(other)
	if prev := r.Put(second); prev != first {
		t.Fatalf("second Put should supersede first")
	}
	cur, ok := r.Current("w", "logos")
	if !ok || cur != second {
		t.Fatalf("current logos batch mismatch")
	}
	if snap := first.Snapshot(); snap.Succeeded != 2 {
		t.Fatalf("superseded batch must not be mutated: %+v", snap)
	}
	if _, ok := r.Get(first.ID()); !ok {
		t.Fatalf("superseded batch should remain addressable")
	}
}

func TestRegistryRetryDoesNotReplaceParent(t *testing.T) {
	r := NewRegistry(10)
	parent := settledBatch(Target{Workspace: "w", Field: "logos"})
	r.Put(parent)
	retry := settledBatch(Target{Workspace: "w", Field: "logos", ParentID: parent.ID(), BaseIndex: 1})
	if prev := r.Put(retry); prev != nil {
		t.Fatalf("retry superseded a batch")
	}
	if cur, _ := r.Current("w", "logos"); cur != parent {
		t.Fatalf("retry replaced the parent as current batch")
	}
}

func TestRegistryResetWorkspace(t *testing.T) {
	r := NewRegistry(10)
	a := settledBatch(Target{Workspace: "w", Field: "logos"})
	b := settledBatch(Target{Workspace: "w", Field: "banners"})
	c := settledBatch(Target{Workspace: "other", Field: "logos"})
	r.Put(a)
	r.Put(b)
	r.Put(c)

	if n := r.ResetWorkspace("w"); n != 2 {
		t.Fatalf("ResetWorkspace reset %d batches, want 2", n)
	}
	if a.Snapshot().Idle != 2 || b.Snapshot().Idle != 2 {
		t.Fatalf("workspace batches were not reset")
	}
	if c.Snapshot().Succeeded != 2 {
		t.Fatalf("other workspace batch was reset")
	}
}

func TestRegistryEvictsOldest(t *testing.T) {
	r := NewRegistry(2)
	first := settledBatch(Target{Workspace: "w", Field: "a"})
	r.Put(first)
	r.Put(settledBatch(Target{Workspace: "w", Field: "b"}))
	r.Put(settledBatch(Target{Workspace: "w", Field: "c"}))

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Get(first.ID()); ok {
		t.Fatalf("oldest batch should be evicted")
	}
	if _, ok := r.Current("w", "a"); ok {
		t.Fatalf("evicted batch should not stay current")
	}
}
