package state

import (
	"sync"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
)

// RecentlyViewedStore is a most-recent-first list without duplicate ids.
type RecentlyViewedStore struct {
	mu      sync.RWMutex
	kv      interfaces.KVStoreInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	limit   int
	items   []models.JobRecord
}

func newRecentlyViewedStore(kv interfaces.KVStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, limit int) *RecentlyViewedStore {
	return &RecentlyViewedStore{kv: kv, logger: logger, metrics: metrics, limit: limit, items: []models.JobRecord{}}
}

func (s *RecentlyViewedStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.JobRecord
	if _, err := readJSON(s.kv, KeyRecentlyViewed, &items, s.logger); err != nil {
		return err
	}
	clean := make([]models.JobRecord, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup || it.ID == "" {
			continue
		}
		seen[it.ID] = struct{}{}
		clean = append(clean, it)
	}
	if len(clean) > s.limit {
		clean = clean[:s.limit]
	}
	s.items = clean
	return nil
}

func (s *RecentlyViewedStore) persistLocked() error {
	v, err := encode(s.items)
	if err != nil {
		return err
	}
	return s.kv.Set(KeyRecentlyViewed, v)
}

// RecordView moves record to the front, dropping any older entry with the same id, and
// evicts from the tail beyond the limit.
func (s *RecentlyViewedStore) RecordView(record models.JobRecord) error {
	if record.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	next := make([]models.JobRecord, 0, len(prev)+1)
	next = append(next, record)
	for _, it := range prev {
		if it.ID != record.ID {
			next = append(next, it)
		}
	}
	if len(next) > s.limit {
		next = next[:s.limit]
	}
	s.items = next
	if err := s.persistLocked(); err != nil {
		s.items = prev
		return err
	}
	s.metrics.IncStoreMutations("recent", "view")
	return nil
}

func (s *RecentlyViewedStore) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	next := make([]models.JobRecord, 0, len(prev))
	for _, it := range prev {
		if it.ID != id {
			next = append(next, it)
		}
	}
	if len(next) == len(prev) {
		return false, nil
	}
	s.items = next
	if err := s.persistLocked(); err != nil {
		s.items = prev
		return false, err
	}
	s.metrics.IncStoreMutations("recent", "remove")
	return true, nil
}

func (s *RecentlyViewedStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	s.items = []models.JobRecord{}
	if err := s.persistLocked(); err != nil {
		s.items = prev
		return err
	}
	s.metrics.IncStoreMutations("recent", "clear")
	return nil
}

func (s *RecentlyViewedStore) List() []models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.JobRecord{}, s.items...)
}
