package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFilters_Inactive(t *testing.T) {
	f := DefaultFilters()
	assert.False(t, f.SalaryActive())
	assert.Equal(t, 0, f.ActiveCount())
}

func TestActiveCount(t *testing.T) {
	f := DefaultFilters()
	f.SalaryRange[1] = 150000
	f.JobTypes = []string{"Full-time"}
	f.WorkMode = []string{WorkModeRemote}
	assert.True(t, f.SalaryActive())
	assert.Equal(t, 3, f.ActiveCount())

	f.ExperienceLevel = []string{"Senior"}
	assert.Equal(t, 4, f.ActiveCount())
}

func TestSalaryActive_MinOnly(t *testing.T) {
	f := DefaultFilters()
	f.SalaryRange[0] = 1
	assert.True(t, f.SalaryActive())
}

func TestClone_DoesNotAlias(t *testing.T) {
	f := DefaultFilters()
	f.JobTypes = []string{"Contract"}
	c := f.Clone()
	c.JobTypes[0] = "Part-time"
	assert.Equal(t, "Contract", f.JobTypes[0])
}
