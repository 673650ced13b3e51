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

// SearchController serves search history and saved searches.
type SearchController struct {
	base
}

func NewSearchController(logger providers.Logger, profiles services.ProfileServiceInterface) *SearchController {
	return &SearchController{base{logger: logger, profiles: profiles}}
}

func (sc *SearchController) HistoryList(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	ok(w, p.State.Searches.History())
}

func (sc *SearchController) HistoryAdd(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	var req models.SearchRequest
	if err := decode(w, r, &req); err != nil {
		sc.fail(w, r, err)
		return
	}
	added, err := p.State.Searches.AddSearch(req.Query, req.Location)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	okMessage(w, status, map[string]interface{}{"added": added, "history": p.State.Searches.History()}, "")
}

func (sc *SearchController) HistoryClear(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	if err := p.State.Searches.ClearHistory(); err != nil {
		sc.fail(w, r, err)
		return
	}
	okMessage(w, http.StatusOK, p.State.Searches.History(), "Search history cleared")
}

func (sc *SearchController) SearchesList(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	ok(w, p.State.Searches.SavedSearches())
}

func (sc *SearchController) SearchesSave(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	req := models.SaveSearchRequest{Filters: models.DefaultFilters()}
	if err := decode(w, r, &req); err != nil {
		sc.fail(w, r, err)
		return
	}
	if err := check(&req); err != nil {
		sc.fail(w, r, err)
		return
	}

	saved, duplicate, err := p.State.Searches.SaveSearch(req.Name, req.Query, req.Location, req.Filters, req.NotifyOnNew)
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	resp := models.ApiResponse{Success: true, Data: saved, Message: "Search saved"}
	if duplicate {
		resp.Message = fmt.Sprintf("Another saved search is already called %q", saved.Name)
		resp.Meta = map[string]bool{"duplicate": true}
	}
	writeJSON(w, http.StatusCreated, resp)
}

// SearchesDelete removes one saved search by id or every one sharing a name.
func (sc *SearchController) SearchesDelete(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	q := r.URL.Query()
	var removed int
	switch id, name := strings.TrimSpace(q.Get("id")), q.Get("name"); {
	case id != "":
		hit, err := p.State.Searches.DeleteSearchByID(id)
		if err != nil {
			sc.fail(w, r, err)
			return
		}
		if hit {
			removed = 1
		}
	case strings.TrimSpace(name) != "":
		n, err := p.State.Searches.DeleteSearch(name)
		if err != nil {
			sc.fail(w, r, err)
			return
		}
		removed = n
	default:
		sc.fail(w, r, badRequest("id or name is required"))
		return
	}
	if removed == 0 {
		sc.fail(w, r, state.ErrNotFound)
		return
	}
	okMessage(w, http.StatusOK, map[string]int{"removed": removed}, "")
}

// SearchesApply returns the query a saved search restores. Nothing is mutated.
func (sc *SearchController) SearchesApply(w http.ResponseWriter, r *http.Request) {
	p, found := sc.profile(w, r)
	if !found {
		return
	}
	saved, err := p.State.Searches.FindSearch(r.URL.Query().Get("name"))
	if err != nil {
		sc.fail(w, r, err)
		return
	}
	ok(w, p.State.Searches.ApplySearch(saved))
}
