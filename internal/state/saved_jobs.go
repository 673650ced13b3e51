package state

import (
	"sort"
	"sync"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
)

// SavedJobsSnapshot is the state before a mutation; handing it to Restore undoes the mutation.
type SavedJobsSnapshot struct {
	PreviousIDs     []string                    `json:"previousIds"`
	PreviousRecords map[string]models.JobRecord `json:"previousRecords"`
}

type ToggleResult struct {
	WasSaved  bool              `json:"wasSaved"`
	Saved     bool              `json:"saved"`
	Count     int               `json:"count"`
	Milestone int               `json:"milestone,omitempty"`
	Undo      SavedJobsSnapshot `json:"undo"`
}

// SavedJobsStore keeps the saved id list and the id to record map. Both are persisted in
// one SetMany so their key sets stay equal after every completed mutation.
type SavedJobsStore struct {
	mu          sync.RWMutex
	kv          interfaces.KVStoreInterface
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	milestones  map[int]struct{}
	onMilestone func(count int)
	ids         []string
	records     map[string]models.JobRecord
}

func newSavedJobsStore(kv interfaces.KVStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, milestones []int) *SavedJobsStore {
	set := make(map[int]struct{}, len(milestones))
	for _, m := range milestones {
		set[m] = struct{}{}
	}
	return &SavedJobsStore{
		kv:         kv,
		logger:     logger,
		metrics:    metrics,
		milestones: set,
		ids:        []string{},
		records:    make(map[string]models.JobRecord),
	}
}

// load reads both keys and repairs any disagreement in favour of the record map. With
// writeBack the repaired pair is persisted.
func (s *SavedJobsStore) load(writeBack bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	var records map[string]models.JobRecord
	if _, err := readJSON(s.kv, KeySavedJobs, &ids, s.logger); err != nil {
		return err
	}
	if _, err := readJSON(s.kv, KeySavedJobsObjects, &records, s.logger); err != nil {
		return err
	}

	ids, records, repaired := repairSaved(ids, records)
	s.ids, s.records = ids, records
	if !repaired {
		return nil
	}
	s.logger.Warnf(providers.TypeStorage, "Saved jobs out of sync, repaired to %d entries", len(ids))
	if writeBack {
		if err := s.persistLocked(); err != nil {
			s.logger.Errorf(providers.TypeStorage, "Failed to write repaired saved jobs: %s", err)
		}
	}
	return nil
}

// repairSaved drops ids without a record and appends records missing from the id list.
func repairSaved(ids []string, records map[string]models.JobRecord) ([]string, map[string]models.JobRecord, bool) {
	repaired := false
	fixed := make(map[string]models.JobRecord, len(records))
	for id, rec := range records {
		if id == "" {
			repaired = true
			continue
		}
		if rec.ID != id {
			rec.ID = id
			repaired = true
		}
		fixed[id] = rec
	}

	out := make([]string, 0, len(fixed))
	seen := make(map[string]struct{}, len(fixed))
	for _, id := range ids {
		if _, ok := fixed[id]; !ok {
			repaired = true
			continue
		}
		if _, dup := seen[id]; dup {
			repaired = true
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	var missing []string
	for id := range fixed {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		out = append(out, missing...)
		repaired = true
	}
	return out, fixed, repaired
}

func (s *SavedJobsStore) persistLocked() error {
	ids, err := encode(s.ids)
	if err != nil {
		return err
	}
	records, err := encode(s.records)
	if err != nil {
		return err
	}
	return s.kv.SetMany(map[string]string{
		KeySavedJobs:        ids,
		KeySavedJobsObjects: records,
	})
}

func (s *SavedJobsStore) snapshotLocked() SavedJobsSnapshot {
	records := make(map[string]models.JobRecord, len(s.records))
	for id, rec := range s.records {
		records[id] = rec
	}
	return SavedJobsSnapshot{
		PreviousIDs:     append([]string{}, s.ids...),
		PreviousRecords: records,
	}
}

func (s *SavedJobsStore) applyLocked(snap SavedJobsSnapshot) {
	s.ids = snap.PreviousIDs
	s.records = snap.PreviousRecords
}

func (s *SavedJobsStore) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

func (s *SavedJobsStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *SavedJobsStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.ids...)
}

func (s *SavedJobsStore) Records() map[string]models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked().PreviousRecords
}

// List returns the saved records in save order.
func (s *SavedJobsStore) List() []models.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.JobRecord, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.records[id])
	}
	return out
}

// Toggle unsaves id when it is saved and saves record under id otherwise.
func (s *SavedJobsStore) Toggle(id string, record *models.JobRecord) (ToggleResult, error) {
	if id == "" {
		return ToggleResult{}, ErrInvalidID
	}

	s.mu.Lock()
	undo := s.snapshotLocked()
	_, wasSaved := s.records[id]
	if wasSaved {
		delete(s.records, id)
		ids := make([]string, 0, len(s.ids))
		for _, v := range s.ids {
			if v != id {
				ids = append(ids, v)
			}
		}
		s.ids = ids
	} else {
		if record == nil {
			s.mu.Unlock()
			return ToggleResult{}, ErrRecordRequired
		}
		rec := *record
		rec.ID = id
		s.ids = append(s.ids, id)
		s.records[id] = rec
	}

	if err := s.persistLocked(); err != nil {
		s.applyLocked(undo)
		s.mu.Unlock()
		return ToggleResult{}, err
	}

	res := ToggleResult{
		WasSaved: wasSaved,
		Saved:    !wasSaved,
		Count:    len(s.ids),
		Undo:     undo,
	}
	if !wasSaved {
		if _, ok := s.milestones[res.Count]; ok {
			res.Milestone = res.Count
		}
	}
	handler := s.onMilestone
	s.mu.Unlock()

	s.metrics.IncStoreMutations("saved", "toggle")
	if res.Milestone > 0 && handler != nil {
		handler(res.Milestone)
	}
	return res, nil
}

// Restore replaces the collection with snap. An inconsistent snapshot is repaired first.
func (s *SavedJobsStore) Restore(snap SavedJobsSnapshot) error {
	records := make(map[string]models.JobRecord, len(snap.PreviousRecords))
	for id, rec := range snap.PreviousRecords {
		records[id] = rec
	}
	ids, records, _ := repairSaved(append([]string{}, snap.PreviousIDs...), records)

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshotLocked()
	s.applyLocked(SavedJobsSnapshot{PreviousIDs: ids, PreviousRecords: records})
	if err := s.persistLocked(); err != nil {
		s.applyLocked(prev)
		return err
	}
	s.metrics.IncStoreMutations("saved", "restore")
	return nil
}

// ClearAll empties the collection and returns what was there for undo.
func (s *SavedJobsStore) ClearAll() (SavedJobsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.snapshotLocked()
	s.applyLocked(SavedJobsSnapshot{PreviousIDs: []string{}, PreviousRecords: make(map[string]models.JobRecord)})
	if err := s.persistLocked(); err != nil {
		s.applyLocked(prev)
		return SavedJobsSnapshot{}, err
	}
	s.metrics.IncStoreMutations("saved", "clear")
	return prev, nil
}
