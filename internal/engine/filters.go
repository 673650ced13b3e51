package engine

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"jobdeck/internal/models"
)

var salaryToken = regexp.MustCompile(`\d[\d,]*`)

// ParseSalary reads the first number in s, ignoring thousands separators. "$120,000 - $150,000"
// gives 120000. ok is false when s holds no usable number.
func ParseSalary(s string) (int, bool) {
	token := salaryToken.FindString(s)
	if token == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(token, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ApplyFilters keeps the jobs that pass every active filter, in input order.
func ApplyFilters(jobs []*models.JobRecord, f models.JobFiltersState) []*models.JobRecord {
	out := make([]*models.JobRecord, 0, len(jobs))
	for _, j := range jobs {
		if j != nil && Matches(j, f) {
			out = append(out, j)
		}
	}
	return out
}

func Matches(j *models.JobRecord, f models.JobFiltersState) bool {
	return matchesSalary(j, f) &&
		matchesJobType(j, f.JobTypes) &&
		matchesWorkMode(j, f.WorkMode) &&
		matchesExperience(j, f.ExperienceLevel)
}

// matchesSalary lets jobs without a readable salary through.
func matchesSalary(j *models.JobRecord, f models.JobFiltersState) bool {
	if !f.SalaryActive() {
		return true
	}
	salary, ok := ParseSalary(j.Salary)
	if !ok {
		return true
	}
	return salary >= f.SalaryRange[0] && salary <= f.SalaryRange[1]
}

func matchesJobType(j *models.JobRecord, types []string) bool {
	if len(types) == 0 {
		return true
	}
	jobType := strings.ToLower(j.Type)
	for _, t := range types {
		if strings.Contains(jobType, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

type workMode struct {
	remote bool
	hybrid bool
}

func (w workMode) onSite() bool {
	return !w.remote && !w.hybrid
}

func classify(j *models.JobRecord) workMode {
	text := strings.ToLower(j.Location + "\n" + j.Title + "\n" + j.Description)
	return workMode{
		remote: strings.Contains(text, "remote"),
		hybrid: strings.Contains(text, "hybrid"),
	}
}

// matchesWorkMode compares mode names case-insensitively. Unknown modes match nothing.
func matchesWorkMode(j *models.JobRecord, modes []string) bool {
	if len(modes) == 0 {
		return true
	}
	c := classify(j)
	for _, m := range modes {
		m = strings.TrimSpace(m)
		switch {
		case strings.EqualFold(m, models.WorkModeRemote):
			if c.remote {
				return true
			}
		case strings.EqualFold(m, models.WorkModeHybrid):
			if c.hybrid {
				return true
			}
		case strings.EqualFold(m, models.WorkModeOnSite):
			if c.onSite() {
				return true
			}
		}
	}
	return false
}

func matchesExperience(j *models.JobRecord, levels []string) bool {
	if len(levels) == 0 {
		return true
	}
	title, desc := strings.ToLower(j.Title), strings.ToLower(j.Description)
	for _, l := range levels {
		l = strings.ToLower(l)
		if strings.Contains(title, l) || strings.Contains(desc, l) {
			return true
		}
	}
	return false
}

// ExtractCity is the part of a location before the first comma, trimmed and lower-cased.
func ExtractCity(location string) string {
	if i := strings.IndexByte(location, ','); i >= 0 {
		location = location[:i]
	}
	return strings.ToLower(strings.TrimSpace(location))
}

type proximity struct {
	exact   bool
	partial bool
	remote  bool
}

func rank(j *models.JobRecord, city string) proximity {
	loc := strings.ToLower(j.Location)
	jobCity := ExtractCity(j.Location)
	exact := jobCity == city
	return proximity{
		exact:   exact,
		partial: !exact && strings.Contains(loc, city),
		remote:  strings.Contains(loc, "remote"),
	}
}

// less orders exact city matches first, then partial matches, then on-site before remote.
func (p proximity) less(o proximity) bool {
	if p.exact != o.exact {
		return p.exact
	}
	if p.partial != o.partial {
		return p.partial
	}
	if p.remote != o.remote {
		return !p.remote
	}
	return false
}

// SortByLocation stable-sorts jobs by proximity to location. A blank location keeps the order.
func SortByLocation(jobs []*models.JobRecord, location string) []*models.JobRecord {
	out := append([]*models.JobRecord(nil), jobs...)
	if isBlank(location) {
		return out
	}
	city := ExtractCity(location)
	ranks := make(map[*models.JobRecord]proximity, len(out))
	for _, j := range out {
		ranks[j] = rank(j, city)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return ranks[out[a]].less(ranks[out[b]])
	})
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
