package assets

import (
	"errors"
	"testing"

	"campaignkit/internal/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to SlotState
		want     bool
	}{
		{SlotIdle, SlotLoading, true},
		{SlotLoading, SlotSuccess, true},
		{SlotLoading, SlotError, true},
		{SlotSuccess, SlotIdle, true},
		{SlotError, SlotIdle, true},
		{SlotLoading, SlotIdle, true},
		{SlotIdle, SlotSuccess, false},
		{SlotIdle, SlotError, false},
		{SlotSuccess, SlotLoading, false},
		{SlotError, SlotLoading, false},
		{SlotSuccess, SlotError, false},
	}
	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSlotSettle(t *testing.T) {
	s := Slot{Index: 3, State: SlotIdle}
	if err := s.settle(image("x"), nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("settle from idle error = %v, want ErrInvalidTransition", err)
	}
	if err := s.dispatch(); err != nil {
		t.Fatalf("dispatch returned error: %v", err)
	}
	if err := s.settle(nil, nil); err != nil {
		t.Fatalf("settle returned error: %v", err)
	}
	if s.State != SlotError || s.Error != domain.ErrEmptyPayload.Error() {
		t.Fatalf("empty payload slot = %+v, want error", s)
	}
	if err := s.dispatch(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("redispatch of terminal slot error = %v, want ErrInvalidTransition", err)
	}
	s.reset()
	if s.State != SlotIdle || s.Error != "" || s.Payload != nil {
		t.Fatalf("reset slot = %+v", s)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	b := newBatch(Target{}, domain.GenerationJob{Prompt: "x", Count: 1, BackendMode: domain.BackendBatchCapable})
	id := b.Identity()
	b.dispatch(id, 0)
	b.settle(id, 0, image("abc"), nil)

	snap := b.Snapshot()
	snap.Slots[0].Payload.Data[0] = 'z'
	snap.Slots[0].State = SlotError

	again := b.Snapshot()
	if again.Slots[0].State != SlotSuccess || string(again.Slots[0].Payload.Data) != "abc" {
		t.Fatalf("snapshot mutation leaked into batch: %+v", again.Slots[0])
	}
}

func TestSettleWithStaleIdentityIsDiscarded(t *testing.T) {
	b := newBatch(Target{}, domain.GenerationJob{Prompt: "x", Count: 2, BackendMode: domain.BackendSingleOnly})
	old := b.Identity()
	if !b.dispatch(old, 0) {
		t.Fatalf("dispatch with current identity failed")
	}
	b.Reset()
	if b.settle(old, 0, image("late"), nil) {
		t.Fatalf("settle with stale identity should be discarded")
	}
	if b.dispatch(old, 1) {
		t.Fatalf("dispatch with stale identity should be rejected")
	}
	if s, _ := b.Slot(0); s.State != SlotIdle {
		t.Fatalf("slot 0 state = %s, want idle", s.State)
	}
}
