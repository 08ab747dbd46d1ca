// Package assets fans image-generation jobs out to a backend and tracks the
// per-slot lifecycle the workspace renders progressively.
package assets

import (
	"fmt"

	"campaignkit/internal/domain"
)

// SlotState is the lifecycle state of one generated image.
type SlotState string

const (
	SlotIdle    SlotState = "idle"
	SlotLoading SlotState = "loading"
	SlotSuccess SlotState = "success"
	SlotError   SlotState = "error"
)

// Terminal reports whether the state is final for the current batch.
func (s SlotState) Terminal() bool {
	return s == SlotSuccess || s == SlotError
}

var transitions = map[SlotState]map[SlotState]bool{
	SlotIdle:    {SlotLoading: true, SlotIdle: true},
	SlotLoading: {SlotSuccess: true, SlotError: true, SlotIdle: true},
	SlotSuccess: {SlotIdle: true},
	SlotError:   {SlotIdle: true},
}

// CanTransition reports whether from -> to is allowed for a single slot.
// Every state may return to idle on reset; terminal states never go back to
// loading.
func CanTransition(from, to SlotState) bool {
	return transitions[from][to]
}

// Slot is one position in a batch. Index is the external correlation key and
// never changes once the batch is declared.
type Slot struct {
	Index   int                 `json:"index"`
	State   SlotState           `json:"state"`
	Payload *domain.InlineImage `json:"-"`
	Error   string              `json:"error,omitempty"`
}

func (s *Slot) moveTo(to SlotState) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("%w: slot %d %s -> %s", domain.ErrInvalidTransition, s.Index, s.State, to)
	}
	s.State = to
	return nil
}

// dispatch marks the slot as in flight.
func (s *Slot) dispatch() error {
	return s.moveTo(SlotLoading)
}

// settle records the outcome of the slot's request. An empty payload counts
// as a failure.
func (s *Slot) settle(img *domain.InlineImage, cause error) error {
	if cause == nil && img.Empty() {
		cause = domain.ErrEmptyPayload
	}
	if cause != nil {
		if err := s.moveTo(SlotError); err != nil {
			return err
		}
		s.Payload = nil
		s.Error = cause.Error()
		return nil
	}
	if err := s.moveTo(SlotSuccess); err != nil {
		return err
	}
	s.Payload = img
	s.Error = ""
	return nil
}

func (s *Slot) reset() {
	s.State = SlotIdle
	s.Payload = nil
	s.Error = ""
}

func (s Slot) clone() Slot {
	s.Payload = s.Payload.Clone()
	return s
}
