package bbcode

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// PlaceholderState is the visible phase of an asynchronously loaded image.
type PlaceholderState int

const (
	// StatePending shows the default glyph. It's the initial state and also the final
	// one if the image could not be fetched.
	StatePending PlaceholderState = iota

	// StateReady shows the fetched image.
	StateReady
)

func (s PlaceholderState) String() string {
	if s == StateReady {
		return "ready"
	}
	return "pending"
}

// Placeholder is a two-state cell standing in for an image while it's being fetched.
//
// It's created in [StatePending] and moves to [StateReady] at most once. Reading
// is safe from any goroutine.
type Placeholder struct {
	id    uuid.UUID
	glyph string

	mu       sync.RWMutex
	state    PlaceholderState
	image    []byte
	finished bool

	// done is closed when the fetch is over, regardless of the outcome.
	done chan struct{}
}

func newPlaceholder(glyph string) *Placeholder {
	return &Placeholder{
		id:    uuid.New(),
		glyph: glyph,
		done:  make(chan struct{}),
	}
}

// ID is the stable identifier of the placeholder, unique across messages.
func (p *Placeholder) ID() uuid.UUID {
	return p.id
}

// Glyph is the name of the default image shown while pending.
func (p *Placeholder) Glyph() string {
	return p.glyph
}

// State returns the current state.
func (p *Placeholder) State() PlaceholderState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Image returns the fetched image bytes once the placeholder is ready.
func (p *Placeholder) Image() ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.image, p.state == StateReady
}

// Done returns a channel which is closed when the fetch is over.
func (p *Placeholder) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the fetch is over or ctx is done and returns the state.
func (p *Placeholder) Wait(ctx context.Context) (PlaceholderState, error) {
	select {
	case <-p.done:
		return p.State(), nil
	case <-ctx.Done():
		return p.State(), ctx.Err()
	}
}

// finish ends the fetch. With a non-nil image the placeholder becomes ready,
// otherwise it keeps showing the glyph. Only the first call has any effect.
func (p *Placeholder) finish(image []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return false
	}

	p.finished = true
	if image != nil {
		p.image = image
		p.state = StateReady
	}

	close(p.done)
	return true
}

func (p *Placeholder) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID    uuid.UUID `json:"id"`
		State string    `json:"state"`
		Glyph string    `json:"glyph"`
	}{p.id, p.State().String(), p.glyph})
}
