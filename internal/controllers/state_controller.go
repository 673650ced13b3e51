package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/services"
	"jobdeck/internal/state"
)

// StateController serves the saved, recently viewed and comparison stores.
type StateController struct {
	base
}

func NewStateController(logger providers.Logger, profiles services.ProfileServiceInterface) *StateController {
	return &StateController{base{logger: logger, profiles: profiles}}
}

type savedList struct {
	IDs   []string           `json:"ids"`
	Jobs  []models.JobRecord `json:"jobs"`
	Count int                `json:"count"`
}

type toggleRequest struct {
	ID     string            `json:"id"`
	Record *models.JobRecord `json:"record,omitempty"`
}

type compareList struct {
	Jobs       []models.JobRecord `json:"jobs"`
	CanAddMore bool               `json:"canAddMore"`
	Max        int                `json:"max"`
}

func listSaved(s *state.SavedJobsStore) savedList {
	ids := s.IDs()
	return savedList{IDs: ids, Jobs: s.List(), Count: len(ids)}
}

// decodeRecord reads a job record body and normalizes it.
func decodeRecord(w http.ResponseWriter, r *http.Request) (models.JobRecord, error) {
	var record models.JobRecord
	if err := decode(w, r, &record); err != nil {
		return models.JobRecord{}, err
	}
	return record.Normalize()
}

func (sc *StateController) SavedList(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	ok(w, listSaved(p.State.Saved))
}

func (sc *StateController) SavedCheck(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		sc.fail(w, r, state.ErrInvalidID)
		return
	}
	ok(w, map[string]interface{}{"id": id, "saved": p.State.Saved.IsSaved(id)})
}

func (sc *StateController) SavedToggle(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	var req toggleRequest
	if err := decode(w, r, &req); err != nil {
		sc.fail(w, r, err)
		return
	}
	id := strings.TrimSpace(req.ID)
	if req.Record != nil {
		if id != "" && strings.TrimSpace(req.Record.ID) == "" {
			req.Record.ID = id
		}
		record, err := req.Record.Normalize()
		if err != nil {
			sc.fail(w, r, err)
			return
		}
		if id == "" {
			id = record.ID
		}
		req.Record = &record
	}

	res, err := p.State.Saved.Toggle(id, req.Record)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	message := "Job removed from saved"
	if res.Saved {
		message = "Job saved"
	}
	if res.Milestone > 0 {
		message = fmt.Sprintf("Milestone reached: %d saved jobs", res.Milestone)
	}
	okMessage(w, http.StatusOK, res, message)
}

func (sc *StateController) SavedRestore(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	var snap state.SavedJobsSnapshot
	if err := decode(w, r, &snap); err != nil {
		sc.fail(w, r, err)
		return
	}
	if err := p.State.Saved.Restore(snap); err != nil {
		sc.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, listSaved(p.State.Saved), "Saved jobs restored")
}

// SavedClear empties the collection and returns the snapshot that undoes it.
func (sc *StateController) SavedClear(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	undo, err := p.State.Saved.ClearAll()
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, undo, fmt.Sprintf("Cleared %d saved jobs", len(undo.PreviousIDs)))
}

func (sc *StateController) RecentList(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	ok(w, p.State.Recent.List())
}

func (sc *StateController) RecentRecord(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	record, err := decodeRecord(w, r)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	if err := p.State.Recent.RecordView(record); err != nil {
		sc.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusCreated, p.State.Recent.List(), "")
}

// RecentDelete removes one entry when id is given and clears the list otherwise.
func (sc *StateController) RecentDelete(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		if err := p.State.Recent.ClearAll(); err != nil {
			sc.fail(w, r, err)
			return
		}
		okMessage(w, http.StatusOK, p.State.Recent.List(), "Recently viewed cleared")
		return
	}
	removed, err := p.State.Recent.Remove(id)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	if !removed {
		sc.fail(w, r, state.ErrNotFound)
		return
	}
	ok(w, p.State.Recent.List())
}

func compareState(c *state.ComparisonStore) compareList {
	return compareList{Jobs: c.List(), CanAddMore: c.CanAddMore(), Max: state.MaxCompare}
}

func (sc *StateController) CompareList(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	ok(w, compareState(p.State.Compare))
}

func (sc *StateController) CompareAdd(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	record, err := decodeRecord(w, r)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	if err := p.State.Compare.Add(record); err != nil {
		sc.fail(w, r, err)
		return
	}
	ok(w, compareState(p.State.Compare))
}

func (sc *StateController) CompareDelete(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		if err := p.State.Compare.ClearAll(); err != nil {
			sc.fail(w, r, err)
			return
		}
		ok(w, compareState(p.State.Compare))
		return
	}
	removed, err := p.State.Compare.Remove(id)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	if !removed {
		sc.fail(w, r, state.ErrNotFound)
		return
	}
	ok(w, compareState(p.State.Compare))
}
