package state

import (
	"strings"
	"sync"
	"time"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"

	"github.com/google/uuid"
)

// SearchStore keeps the search history (oldest first) and the saved searches.
type SearchStore struct {
	mu           sync.RWMutex
	kv           interfaces.KVStoreInterface
	logger       providers.Logger
	metrics      providers.MetricsProviderInterface
	historyLimit int
	now          func() time.Time
	history      []models.SearchHistoryEntry
	saved        []models.SavedSearch
}

func newSearchStore(kv interfaces.KVStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, historyLimit int, now func() time.Time) *SearchStore {
	return &SearchStore{
		kv:           kv,
		logger:       logger,
		metrics:      metrics,
		historyLimit: historyLimit,
		now:          now,
		history:      []models.SearchHistoryEntry{},
		saved:        []models.SavedSearch{},
	}
}

func (s *SearchStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []models.SearchHistoryEntry
	var saved []models.SavedSearch
	if _, err := readJSON(s.kv, KeySearchHistory, &history, s.logger); err != nil {
		return err
	}
	if _, err := readJSON(s.kv, KeySavedSearches, &saved, s.logger); err != nil {
		return err
	}
	if history == nil {
		history = []models.SearchHistoryEntry{}
	}
	if saved == nil {
		saved = []models.SavedSearch{}
	}
	for i := range saved {
		// entries written before ids existed
		if saved[i].ID == "" {
			saved[i].ID = uuid.NewString()
		}
	}
	s.history = s.bounded(history)
	s.saved = saved
	return nil
}

func (s *SearchStore) bounded(history []models.SearchHistoryEntry) []models.SearchHistoryEntry {
	if s.historyLimit < 0 || len(history) <= s.historyLimit {
		return history
	}
	return append([]models.SearchHistoryEntry{}, history[len(history)-s.historyLimit:]...)
}

func (s *SearchStore) persistHistoryLocked() error {
	v, err := encode(s.history)
	if err != nil {
		return err
	}
	return s.kv.Set(KeySearchHistory, v)
}

func (s *SearchStore) persistSavedLocked() error {
	v, err := encode(s.saved)
	if err != nil {
		return err
	}
	return s.kv.Set(KeySavedSearches, v)
}

// AddSearch appends a history entry and reports whether one was added. Blank query and
// location together are ignored; repeated searches are kept.
func (s *SearchStore) AddSearch(query, location string) (bool, error) {
	query, location = strings.TrimSpace(query), strings.TrimSpace(location)
	if query == "" && location == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.history
	next := append(append(make([]models.SearchHistoryEntry, 0, len(prev)+1), prev...), models.SearchHistoryEntry{
		Query:     query,
		Location:  location,
		Timestamp: s.now(),
	})
	s.history = s.bounded(next)
	if err := s.persistHistoryLocked(); err != nil {
		s.history = prev
		return false, err
	}
	s.metrics.IncStoreMutations("history", "add")
	return true, nil
}

// SaveSearch appends a saved search. duplicate reports that the name was already taken;
// both entries are kept.
func (s *SearchStore) SaveSearch(name, query, location string, filters models.JobFiltersState, notifyOnNew bool) (saved models.SavedSearch, duplicate bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.SavedSearch{}, false, ErrInvalidName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.saved {
		if existing.Name == name {
			duplicate = true
			break
		}
	}
	entry := models.SavedSearch{
		ID:          uuid.NewString(),
		Name:        name,
		Query:       strings.TrimSpace(query),
		Location:    strings.TrimSpace(location),
		Filters:     filters.Clone(),
		CreatedAt:   s.now(),
		NotifyOnNew: notifyOnNew,
	}
	prev := s.saved
	s.saved = append(append(make([]models.SavedSearch, 0, len(prev)+1), prev...), entry)
	if err := s.persistSavedLocked(); err != nil {
		s.saved = prev
		return models.SavedSearch{}, false, err
	}
	s.metrics.IncStoreMutations("searches", "save")
	return entry, duplicate, nil
}

// ApplySearch projects a saved search onto the query it restores. It has no side effects.
func (s *SearchStore) ApplySearch(saved models.SavedSearch) models.SearchQuery {
	return models.SearchQuery{
		Query:    saved.Query,
		Location: saved.Location,
		Filters:  saved.Filters.Clone(),
	}
}

// FindSearch returns the most recently saved search called name.
func (s *SearchStore) FindSearch(name string) (models.SavedSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.saved) - 1; i >= 0; i-- {
		if s.saved[i].Name == name {
			return s.saved[i], nil
		}
	}
	return models.SavedSearch{}, ErrNotFound
}

// DeleteSearch removes every saved search called name and returns how many went.
func (s *SearchStore) DeleteSearch(name string) (int, error) {
	return s.deleteWhere(func(ss models.SavedSearch) bool { return ss.Name == name })
}

func (s *SearchStore) DeleteSearchByID(id string) (bool, error) {
	n, err := s.deleteWhere(func(ss models.SavedSearch) bool { return ss.ID == id })
	return n > 0, err
}

func (s *SearchStore) deleteWhere(match func(models.SavedSearch) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.saved
	next := make([]models.SavedSearch, 0, len(prev))
	for _, ss := range prev {
		if !match(ss) {
			next = append(next, ss)
		}
	}
	removed := len(prev) - len(next)
	if removed == 0 {
		return 0, nil
	}
	s.saved = next
	if err := s.persistSavedLocked(); err != nil {
		s.saved = prev
		return 0, err
	}
	s.metrics.IncStoreMutations("searches", "delete")
	return removed, nil
}

func (s *SearchStore) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.history
	s.history = []models.SearchHistoryEntry{}
	if err := s.persistHistoryLocked(); err != nil {
		s.history = prev
		return err
	}
	s.metrics.IncStoreMutations("history", "clear")
	return nil
}

func (s *SearchStore) History() []models.SearchHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SearchHistoryEntry{}, s.history...)
}

func (s *SearchStore) SavedSearches() []models.SavedSearch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SavedSearch{}, s.saved...)
}
