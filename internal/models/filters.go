package models

const (
	SalaryFloor   = 0
	SalaryCeiling = 300000
)

const (
	WorkModeRemote = "Remote"
	WorkModeHybrid = "Hybrid"
	WorkModeOnSite = "On-site"
)

type JobFiltersState struct {
	SalaryRange     [2]int   `json:"salaryRange"`
	JobTypes        []string `json:"jobTypes"`
	WorkMode        []string `json:"workMode"`
	ExperienceLevel []string `json:"experienceLevel"`
}

func DefaultFilters() JobFiltersState {
	return JobFiltersState{
		SalaryRange:     [2]int{SalaryFloor, SalaryCeiling},
		JobTypes:        []string{},
		WorkMode:        []string{},
		ExperienceLevel: []string{},
	}
}

func (f JobFiltersState) SalaryActive() bool {
	return f.SalaryRange[0] > SalaryFloor || f.SalaryRange[1] < SalaryCeiling
}

// ActiveCount is the number of filter dimensions that diverge from the defaults.
func (f JobFiltersState) ActiveCount() int {
	n := 0
	if f.SalaryActive() {
		n++
	}
	if len(f.JobTypes) > 0 {
		n++
	}
	if len(f.WorkMode) > 0 {
		n++
	}
	if len(f.ExperienceLevel) > 0 {
		n++
	}
	return n
}

// Clone deep-copies the slices so stored filters never alias caller memory.
func (f JobFiltersState) Clone() JobFiltersState {
	return JobFiltersState{
		SalaryRange:     f.SalaryRange,
		JobTypes:        append([]string{}, f.JobTypes...),
		WorkMode:        append([]string{}, f.WorkMode...),
		ExperienceLevel: append([]string{}, f.ExperienceLevel...),
	}
}
