package controllers

import (
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobdeck/internal/engine"
	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/services"

	"github.com/spf13/cast"
)

// BrowseController runs the filter and pagination engine over cached search results and
// proxies location suggestions.
type BrowseController struct {
	base
	search    services.SearchServiceInterface
	locations services.LocationServiceInterface
}

func NewBrowseController(logger providers.Logger, profiles services.ProfileServiceInterface, search services.SearchServiceInterface, locations services.LocationServiceInterface) *BrowseController {
	return &BrowseController{
		base:      base{logger: logger, profiles: profiles},
		search:    search,
		locations: locations,
	}
}

type browseMeta struct {
	Stale     bool      `json:"stale"`
	FetchedAt time.Time `json:"fetchedAt"`
	Warning   string    `json:"warning,omitempty"`
	Seed      int64     `json:"seed"`
}

// listParam collects a multi-valued parameter given either repeated or comma separated.
func listParam(q url.Values, name string) []string {
	out := []string{}
	for _, raw := range q[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseBrowseQuery(q url.Values) engine.BrowseQuery {
	filters := models.DefaultFilters()
	if v := q.Get("salaryMin"); v != "" {
		filters.SalaryRange[0] = cast.ToInt(v)
	}
	if v := q.Get("salaryMax"); v != "" {
		filters.SalaryRange[1] = cast.ToInt(v)
	}
	filters.JobTypes = listParam(q, "jobTypes")
	filters.WorkMode = listParam(q, "workMode")
	filters.ExperienceLevel = listParam(q, "experienceLevel")

	pageSize := cast.ToInt(q.Get("pageSize"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = engine.PageSize
	}
	return engine.BrowseQuery{
		Query:    strings.TrimSpace(q.Get("q")),
		Location: strings.TrimSpace(q.Get("location")),
		Filters:  filters,
		Page:     cast.ToInt(q.Get("page")),
		PageSize: pageSize,
	}
}

func (bc *BrowseController) Browse(w http.ResponseWriter, r *http.Request) {
	bc.browse(w, r, false)
}

// Refresh picks a new shuffle order and refetches the results before browsing.
func (bc *BrowseController) Refresh(w http.ResponseWriter, r *http.Request) {
	bc.browse(w, r, true)
}

func (bc *BrowseController) browse(w http.ResponseWriter, r *http.Request, refresh bool) {
	p, found := bc.profile(w, r)
	if !found {
		return
	}
	query := parseBrowseQuery(r.URL.Query())

	var (
		res services.SearchResult
		err error
	)
	if refresh {
		bc.profiles.Refresh(p)
		res, err = bc.search.Refresh(r.Context(), p.Remote, query.Query, query.Location)
	} else {
		res, err = bc.search.Search(r.Context(), p.Remote, query.Query, query.Location)
	}
	if err != nil {
		bc.fail(w, r, err)
		return
	}

	jobs := make([]*models.JobRecord, len(res.Jobs))
	for i := range res.Jobs {
		jobs[i] = &res.Jobs[i]
	}
	seed := p.Seed()
	page := engine.Browse(jobs, query, rand.New(rand.NewSource(seed)))

	writeJSON(w, http.StatusOK, models.ApiResponse{
		Success: true,
		Data:    page,
		Message: res.Warning,
		Meta:    browseMeta{Stale: res.Stale, FetchedAt: res.FetchedAt, Warning: res.Warning, Seed: seed},
	})
}

func (bc *BrowseController) Locations(w http.ResponseWriter, r *http.Request) {
	p, found := bc.profile(w, r)
	if !found {
		return
	}
	suggestions, err := bc.locations.Lookup(r.Context(), p.Name, p.Remote, r.URL.Query().Get("q"))
	if err != nil {
		bc.fail(w, r, err)
		return
	}
	ok(w, suggestions)
}
