// Package engine turns a search result list into one page of browse output: optional
// shuffle, filters, location-proximity sort and pagination. Every function is pure; the
// only randomness comes from the *rand.Rand the caller passes in.
package engine

import (
	"math/rand"

	"jobdeck/internal/models"
)

const PageSize = 20

type BrowseQuery struct {
	Query    string
	Location string
	Filters  models.JobFiltersState
	Page     int
	PageSize int
}

type Page struct {
	Items         []models.JobRecord `json:"items"`
	Page          int                `json:"page"`
	PageSize      int                `json:"pageSize"`
	Total         int                `json:"total"`
	TotalPages    int                `json:"totalPages"`
	ActiveFilters int                `json:"activeFilters"`
	Shuffled      bool               `json:"shuffled"`
}

// Browse runs the whole pipeline. Nil entries are skipped and not counted. The list is
// shuffled only when both query and location are blank.
func Browse(jobs []*models.JobRecord, q BrowseQuery, rng *rand.Rand) Page {
	size := q.PageSize
	if size <= 0 {
		size = PageSize
	}

	list := compact(jobs)
	shuffled := isBlank(q.Query) && isBlank(q.Location)
	if shuffled {
		list = Shuffle(list, rng)
	}
	list = ApplyFilters(list, q.Filters)
	list = SortByLocation(list, q.Location)

	page := q.Page
	if page < 1 {
		page = 1
	}
	items := Paginate(list, page, size)
	out := make([]models.JobRecord, len(items))
	for i, j := range items {
		out[i] = *j
	}
	return Page{
		Items:         out,
		Page:          page,
		PageSize:      size,
		Total:         len(list),
		TotalPages:    TotalPages(len(list), size),
		ActiveFilters: q.Filters.ActiveCount(),
		Shuffled:      shuffled,
	}
}

func compact(jobs []*models.JobRecord) []*models.JobRecord {
	out := make([]*models.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		if j != nil {
			out = append(out, j)
		}
	}
	return out
}

// Shuffle returns a uniformly random permutation of jobs (Fisher-Yates).
func Shuffle(jobs []*models.JobRecord, rng *rand.Rand) []*models.JobRecord {
	out := append([]*models.JobRecord(nil), jobs...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Paginate returns the 1-indexed page of size items. Pages before the first are treated as
// the first; pages past the end are empty.
func Paginate(jobs []*models.JobRecord, page, size int) []*models.JobRecord {
	if size <= 0 {
		size = PageSize
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(jobs) {
		return []*models.JobRecord{}
	}
	end := start + size
	if end > len(jobs) {
		end = len(jobs)
	}
	return jobs[start:end]
}

func TotalPages(total, size int) int {
	if size <= 0 {
		size = PageSize
	}
	return (total + size - 1) / size
}
