package engine

import (
	"testing"

	"jobdeck/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseSalary(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"$120,000", 120000, true},
		{"$100,000 - $150,000", 100000, true},
		{"85000/yr", 85000, true},
		{"USD 95000 plus bonus", 95000, true},
		{"$120k", 120, true},
		{"Competitive", 0, false},
		{"", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseSalary(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestApplyFilters_Salary(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "low", Salary: "$40,000"},
		{ID: "mid", Salary: "$90,000 - $110,000"},
		{ID: "high", Salary: "$250,000"},
		{ID: "unknown", Salary: "Competitive"},
		{ID: "absent"},
	}
	f := models.DefaultFilters()
	assert.Len(t, ApplyFilters(jobs, f), 5)

	f.SalaryRange = [2]int{80000, 200000}
	assert.Equal(t, []string{"mid", "unknown", "absent"}, idsOf(ApplyFilters(jobs, f)))

	f.SalaryRange = [2]int{90000, 90000}
	assert.Equal(t, []string{"mid", "unknown", "absent"}, idsOf(ApplyFilters(jobs, f)))
}

func TestApplyFilters_JobTypeSubstring(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "contract", Type: "Full-Time Contract"},
		{ID: "part", Type: "Part-time"},
		{ID: "none"},
	}
	f := models.DefaultFilters()
	f.JobTypes = []string{"Full-time"}
	assert.Equal(t, []string{"contract"}, idsOf(ApplyFilters(jobs, f)))

	f.JobTypes = []string{"Full-time", "part-TIME"}
	assert.Equal(t, []string{"contract", "part"}, idsOf(ApplyFilters(jobs, f)))
}

func TestApplyFilters_WorkMode(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "remote-loc", Location: "Remote"},
		{ID: "remote-desc", Location: "Berlin", Description: "Fully REMOTE team"},
		{ID: "hybrid", Location: "Austin, TX", Title: "Hybrid Engineer"},
		{ID: "both", Location: "Remote or hybrid"},
		{ID: "office", Location: "Paris"},
	}
	f := models.DefaultFilters()

	f.WorkMode = []string{models.WorkModeRemote}
	assert.Equal(t, []string{"remote-loc", "remote-desc", "both"}, idsOf(ApplyFilters(jobs, f)))

	f.WorkMode = []string{models.WorkModeHybrid}
	assert.Equal(t, []string{"hybrid", "both"}, idsOf(ApplyFilters(jobs, f)))

	f.WorkMode = []string{models.WorkModeOnSite}
	assert.Equal(t, []string{"office"}, idsOf(ApplyFilters(jobs, f)))

	f.WorkMode = []string{models.WorkModeOnSite, models.WorkModeHybrid}
	assert.Equal(t, []string{"hybrid", "both", "office"}, idsOf(ApplyFilters(jobs, f)))

	f.WorkMode = []string{"Moon base"}
	assert.Empty(t, ApplyFilters(jobs, f))

	f.WorkMode = []string{"remote"}
	assert.Equal(t, []string{"remote-loc", "remote-desc", "both"}, idsOf(ApplyFilters(jobs, f)))

	f.WorkMode = []string{"ON-SITE", " hybrid "}
	assert.Equal(t, []string{"hybrid", "both", "office"}, idsOf(ApplyFilters(jobs, f)))
}

func TestApplyFilters_Experience(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "senior", Title: "Senior Level Backend Engineer"},
		{ID: "entry", Description: "Great entry level role"},
		{ID: "other", Title: "Engineer"},
	}
	f := models.DefaultFilters()
	f.ExperienceLevel = []string{"Entry Level", "Senior Level"}
	assert.Equal(t, []string{"senior", "entry"}, idsOf(ApplyFilters(jobs, f)))
}

func TestApplyFilters_Combined(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "match", Type: "Full-time", Location: "Remote", Salary: "$150,000"},
		{ID: "wrong-type", Type: "Contract", Location: "Remote", Salary: "$150,000"},
		{ID: "too-cheap", Type: "Full-time", Location: "Remote", Salary: "$50,000"},
	}
	f := models.DefaultFilters()
	f.JobTypes = []string{"full-time"}
	f.WorkMode = []string{models.WorkModeRemote}
	f.SalaryRange = [2]int{100000, 300000}
	assert.Equal(t, []string{"match"}, idsOf(ApplyFilters(jobs, f)))
}

func TestApplyFilters_Idempotent(t *testing.T) {
	jobs := makeJobs(30)
	for i, j := range jobs {
		if i%3 == 0 {
			j.Type = "Full-time"
		}
		if i%2 == 0 {
			j.Location = "Remote"
		}
	}
	f := models.DefaultFilters()
	f.JobTypes = []string{"full"}
	f.WorkMode = []string{models.WorkModeRemote}

	first := ApplyFilters(jobs, f)
	second := ApplyFilters(jobs, f)
	assert.Equal(t, idsOf(first), idsOf(second))
	assert.Equal(t, idsOf(first), idsOf(ApplyFilters(first, f)))
	assert.Len(t, jobs, 30)
}

func TestExtractCity(t *testing.T) {
	assert.Equal(t, "austin", ExtractCity("Austin, TX"))
	assert.Equal(t, "austin", ExtractCity("Austin"))
	assert.Equal(t, "new york", ExtractCity("  New York , NY, USA"))
	assert.Equal(t, "", ExtractCity(""))
	assert.Equal(t, "", ExtractCity(", somewhere"))
}

func TestSortByLocation_ExactBeforeRemote(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "remote", Location: "Remote"},
		{ID: "austin", Location: "Austin, TX"},
	}
	assert.Equal(t, []string{"austin", "remote"}, idsOf(SortByLocation(jobs, "Austin")))
}

func TestSortByLocation_Tiers(t *testing.T) {
	jobs := []*models.JobRecord{
		{ID: "remote-1", Location: "Remote"},
		{ID: "other-1", Location: "Denver, CO"},
		{ID: "partial-remote", Location: "Remote - Austin area"},
		{ID: "exact-1", Location: "Austin, TX"},
		{ID: "partial", Location: "Greater Austin"},
		{ID: "other-2", Location: "Boston, MA"},
		{ID: "exact-2", Location: "austin"},
		{ID: "remote-2", Location: "remote (US)"},
	}
	got := idsOf(SortByLocation(jobs, "Austin, Texas"))
	assert.Equal(t, []string{
		"exact-1", "exact-2",
		"partial", "partial-remote",
		"other-1", "other-2",
		"remote-1", "remote-2",
	}, got)
}

func TestSortByLocation_BlankKeepsOrder(t *testing.T) {
	jobs := []*models.JobRecord{{ID: "b", Location: "Remote"}, {ID: "a", Location: "Austin"}}
	assert.Equal(t, []string{"b", "a"}, idsOf(SortByLocation(jobs, "   ")))
	assert.Equal(t, []string{"b", "a"}, idsOf(jobs))
}
