package storage

import (
	"sort"
	"sync"

	"jobdeck/internal/storage/interfaces"
)

// MemoryBackend keeps every profile in process memory. Handles of the same profile share
// data and are notified of each other's writes.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
	hub  *hub
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		data: make(map[string]map[string]string),
		hub:  newHub(),
	}
}

func (b *MemoryBackend) Open(profile string) (interfaces.KVStoreInterface, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	b.mu.Lock()
	if _, ok := b.data[profile]; !ok {
		b.data[profile] = make(map[string]string)
	}
	b.mu.Unlock()
	return newHandle(profile, b, b.hub), nil
}

func (b *MemoryBackend) Profiles() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	profiles := make([]string, 0, len(b.data))
	for p := range b.data {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)
	return profiles, nil
}

func (b *MemoryBackend) Flush() error { return nil }

func (b *MemoryBackend) Close() error { return nil }

func (b *MemoryBackend) get(profile, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[profile][key]
	return v, ok, nil
}

func (b *MemoryBackend) write(profile, origin string, values map[string]string, deletes []string) error {
	b.mu.Lock()
	next, changed := applyWrite(b.data[profile], values, deletes)
	b.data[profile] = next
	b.mu.Unlock()

	b.hub.publish(profile, origin, changed)
	return nil
}
