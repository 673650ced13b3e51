package state

import (
	"sync"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
)

// ComparisonStore is an insertion-ordered set of at most MaxCompare jobs.
type ComparisonStore struct {
	mu      sync.RWMutex
	kv      interfaces.KVStoreInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	items   []models.JobRecord
}

func newComparisonStore(kv interfaces.KVStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) *ComparisonStore {
	return &ComparisonStore{kv: kv, logger: logger, metrics: metrics, items: []models.JobRecord{}}
}

func (s *ComparisonStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.JobRecord
	if _, err := readJSON(s.kv, KeyCompareJobs, &items, s.logger); err != nil {
		return err
	}
	clean := make([]models.JobRecord, 0, MaxCompare)
	for _, it := range items {
		if it.ID == "" || indexOf(clean, it.ID) >= 0 {
			continue
		}
		if len(clean) == MaxCompare {
			s.logger.Warnf(providers.TypeStorage, "Stored comparison holds more than %d jobs, extra dropped", MaxCompare)
			break
		}
		clean = append(clean, it)
	}
	s.items = clean
	return nil
}

func indexOf(items []models.JobRecord, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *ComparisonStore) persistLocked() error {
	v, err := encode(s.items)
	if err != nil {
		return err
	}
	return s.kv.Set(KeyCompareJobs, v)
}

// Add appends record. Adding a member again is a successful no-op; adding a new one to a
// full set fails with ErrCapacityExceeded and leaves the set unchanged.
func (s *ComparisonStore) Add(record models.JobRecord) error {
	if record.ID == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.items, record.ID) >= 0 {
		return nil
	}
	if len(s.items) >= MaxCompare {
		return ErrCapacityExceeded
	}
	prev := s.items
	s.items = append(append(make([]models.JobRecord, 0, len(prev)+1), prev...), record)
	if err := s.persistLocked(); err != nil {
		s.items = prev
		return err
	}
	s.metrics.IncStoreMutations("compare", "add")
	return nil
}

func (s *ComparisonStore) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.items, id)
	if i < 0 {
		return false, nil
	}
	prev := s.items
	next := make([]models.JobRecord, 0, len(prev)-1)
	next = append(next, prev[:i]...)
	next = append(next, prev[i+1:]...)
	s.items = next
	if err := s.persistLocked(); err != nil {
		s.items = prev
		return false, err
	}
	s.metrics.IncStoreMutations("compare", "remove")
	return true, nil
}

func (s *ComparisonStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	s.items = []models.JobRecord{}
	if err := s.persistLocked(); err != nil {
		s.items = prev
		return err
	}
	s.metrics.IncStoreMutations("compare", "clear")
	return nil
}

func (s *ComparisonStore) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return indexOf(s.items, id) >= 0
}

func (s *ComparisonStore) CanAddMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items) < MaxCompare
}

func (s *ComparisonStore) List() []models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.JobRecord{}, s.items...)
}
