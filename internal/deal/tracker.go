package deal

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned for a fetch whose key was requested again before it finished.
var ErrSuperseded = errors.New("request superseded by a newer one for the same key")

// Tracker hands out cancellable request handles keyed by the input that triggered them
// (lead id, unit id, project id). Starting a request for a key cancels the one in flight
// for that key, so only the latest response is ever applied.
type Tracker struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflight
}

type inflight struct {
	id     uint64
	cancel context.CancelFunc
}

func NewTracker() *Tracker {
	return &Tracker{inflight: make(map[string]inflight)}
}

// Handle is one in-flight request.
type Handle struct {
	tracker *Tracker
	key     string
	id      uint64
	ctx     context.Context
	cancel  context.CancelFunc
}

// Begin starts a request for key, cancelling any earlier one for the same key.
func (t *Tracker) Begin(parent context.Context, key string) *Handle {
	ctx, cancel := context.WithCancel(parent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.inflight[key]; ok {
		prev.cancel()
	}
	t.seq++
	t.inflight[key] = inflight{id: t.seq, cancel: cancel}

	return &Handle{tracker: t, key: key, id: t.seq, ctx: ctx, cancel: cancel}
}

func (h *Handle) Context() context.Context { return h.ctx }

// Current reports whether no newer request for the same key has started.
func (h *Handle) Current() bool {
	h.tracker.mu.Lock()
	defer h.tracker.mu.Unlock()
	cur, ok := h.tracker.inflight[h.key]
	return ok && cur.id == h.id
}

// Finish releases the handle. It returns ErrSuperseded if a newer request for the key
// started meanwhile, otherwise err unchanged.
func (h *Handle) Finish(err error) error {
	h.tracker.mu.Lock()
	defer h.tracker.mu.Unlock()
	defer h.cancel()

	cur, ok := h.tracker.inflight[h.key]
	if !ok || cur.id != h.id {
		return ErrSuperseded
	}
	delete(h.tracker.inflight, h.key)
	return err
}

// Fetch runs fn under a handle for key and discards its result if it was superseded.
func Fetch[T any](ctx context.Context, t *Tracker, key string, fn func(context.Context) (T, error)) (T, error) {
	h := t.Begin(ctx, key)
	v, err := fn(h.Context())
	if err = h.Finish(err); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
