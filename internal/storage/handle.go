package storage

import (
	"sync"

	"jobdeck/internal/storage/interfaces"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// writer is the per-backend half of a handle. write applies values and deletes for one
// profile atomically and is responsible for notifying other handles.
type writer interface {
	get(profile, key string) (string, bool, error)
	write(profile, origin string, values map[string]string, deletes []string) error
}

type handle struct {
	profile string
	origin  string
	backend writer
	hub     *hub
	closed  *atomic.Bool

	mu     sync.Mutex
	unsubs []func()
}

func newHandle(profile string, backend writer, h *hub) *handle {
	return &handle{
		profile: profile,
		origin:  uuid.NewString(),
		backend: backend,
		hub:     h,
		closed:  atomic.NewBool(false),
	}
}

func (h *handle) Get(key string) (string, bool, error) {
	if h.closed.Load() {
		return "", false, ErrClosed
	}
	return h.backend.get(h.profile, key)
}

func (h *handle) Set(key, value string) error {
	return h.SetMany(map[string]string{key: value})
}

func (h *handle) SetMany(values map[string]string) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if len(values) == 0 {
		return nil
	}
	return h.backend.write(h.profile, h.origin, values, nil)
}

func (h *handle) Delete(keys ...string) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if len(keys) == 0 {
		return nil
	}
	return h.backend.write(h.profile, h.origin, nil, keys)
}

func (h *handle) Subscribe(fn func(interfaces.ExternalChange)) func() {
	unsub := h.hub.subscribe(h.profile, h.origin, fn)
	h.mu.Lock()
	h.unsubs = append(h.unsubs, unsub)
	h.mu.Unlock()
	return unsub
}

func (h *handle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	h.mu.Lock()
	unsubs := h.unsubs
	h.unsubs = nil
	h.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
	return nil
}

// applyWrite returns a copy of current with the write applied and the keys whose value changed.
func applyWrite(current map[string]string, values map[string]string, deletes []string) (map[string]string, []string) {
	next := make(map[string]string, len(current)+len(values))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	for _, k := range deletes {
		delete(next, k)
	}
	return next, changedKeys(current, next)
}
