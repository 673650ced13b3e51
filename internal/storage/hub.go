package storage

import (
	"sort"
	"sync"

	"jobdeck/internal/storage/interfaces"
)

// subscriber delivers changes in publish order on its own goroutine, so a writer never
// runs another handle's callback while holding its own locks.
type subscriber struct {
	origin string
	fn     func(interfaces.ExternalChange)

	mu      sync.Mutex
	pending []interfaces.ExternalChange
	running bool
	closed  bool
}

func (s *subscriber) deliver(change interfaces.ExternalChange) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, change)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()
	go s.drain()
}

func (s *subscriber) drain() {
	for {
		s.mu.Lock()
		if s.closed || len(s.pending) == 0 {
			s.running = false
			s.pending = nil
			s.mu.Unlock()
			return
		}
		change := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		s.fn(change)
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// hub fans change notifications out to the handles of a profile. A subscriber never
// receives changes published under its own origin.
type hub struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string]map[uint64]*subscriber
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[uint64]*subscriber)}
}

func (h *hub) subscribe(profile, origin string, fn func(interfaces.ExternalChange)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	if h.subs[profile] == nil {
		h.subs[profile] = make(map[uint64]*subscriber)
	}
	sub := &subscriber{origin: origin, fn: fn}
	h.subs[profile][id] = sub

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.close()
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[profile], id)
			if len(h.subs[profile]) == 0 {
				delete(h.subs, profile)
			}
		})
	}
}

// publish queues the change for every subscriber of profile except those sharing origin.
// An empty origin marks a change from outside the process and reaches everyone.
func (h *hub) publish(profile, origin string, keys []string) {
	if len(keys) == 0 {
		return
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs[profile] {
		if origin != "" && s.origin == origin {
			continue
		}
		s.deliver(interfaces.ExternalChange{Profile: profile, Keys: sorted})
	}
}

// changedKeys lists keys of next whose value differs from prev, plus keys of prev missing from next.
func changedKeys(prev, next map[string]string) []string {
	var keys []string
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			keys = append(keys, k)
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
