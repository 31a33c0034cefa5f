package views

import (
	"errors"
	"sync"
)

type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseSubmitting
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseSubmitting:
		return "submitting"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var ErrDialogClosed = errors.New("dialog is not open")

// Dialog is the state of one modal: closed, open with a draft, submitting
// that draft, or failed with a message and the draft kept for a retry.
type Dialog[T any] struct {
	mu    sync.Mutex
	phase Phase
	draft T
	err   string
}

// Open shows the dialog with draft. Reopening discards any previous state.
func (d *Dialog[T]) Open(draft T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.phase = PhaseOpen
	d.draft = draft
	d.err = ""
}

// Close hides the dialog and drops the draft.
func (d *Dialog[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	d.phase = PhaseClosed
	d.draft = zero
	d.err = ""
}

func (d *Dialog[T]) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *Dialog[T]) IsOpen() bool {
	return d.Phase() != PhaseClosed
}

func (d *Dialog[T]) Draft() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// Error returns the message of the last failed submit.
func (d *Dialog[T]) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Update edits the draft in place. It is refused while closed or submitting.
func (d *Dialog[T]) Update(fn func(*T)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.phase {
	case PhaseClosed:
		return ErrDialogClosed
	case PhaseSubmitting:
		return ErrInFlight
	}
	fn(&d.draft)
	return nil
}

// Begin moves an open or failed dialog to submitting and returns the draft.
func (d *Dialog[T]) Begin() (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.phase {
	case PhaseClosed:
		var zero T
		return zero, ErrDialogClosed
	case PhaseSubmitting:
		var zero T
		return zero, ErrInFlight
	}
	d.phase = PhaseSubmitting
	d.err = ""
	return d.draft, nil
}

// Fail records a failed submit and keeps the draft.
func (d *Dialog[T]) Fail(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase == PhaseClosed {
		return
	}
	d.phase = PhaseFailed
	d.err = msg
}
