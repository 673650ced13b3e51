package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeJobID(t *testing.T) {
	assert.Equal(t, "Go Dev-Acme-indeed", SynthesizeJobID("Go Dev", "Acme", "indeed"))
	assert.Equal(t, "untitled-company-unknown", SynthesizeJobID("", "", ""))
}

func TestNormalize_SynthesizesMissingID(t *testing.T) {
	job, err := JobRecord{Title: "  Backend   Engineer ", Company: "Acme", Source: "remoteok"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer-Acme-remoteok", job.ID)
	assert.Equal(t, "Backend Engineer", job.Title)
}

func TestNormalize_KeepsServerID(t *testing.T) {
	job, err := JobRecord{ID: " 42 ", Title: "SRE"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "42", job.ID)
}

func TestNormalize_RejectsRelativeURL(t *testing.T) {
	_, err := JobRecord{ID: "1", URL: "/jobs/1"}.Normalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidJob)
}

func TestNormalize_AcceptsAbsoluteURL(t *testing.T) {
	job, err := JobRecord{ID: "1", URL: "https://jobs.example.com/1"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com/1", job.URL)
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "  Build   APIs  ", "Build APIs"},
		{"paragraphs", "<p>Build APIs</p><p>Ship <b>fast</b></p>", "Build APIs\nShip fast"},
		{"line breaks", "Remote<br>Full-time", "Remote\nFull-time"},
		{"scripts dropped", "<div>Hi<script>alert(1)</script></div>", "Hi"},
		{"entities", "R&amp;D team", "R&D team"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestJobFromMap_StringifiesLooseFields(t *testing.T) {
	job, err := JobFromMap(map[string]interface{}{
		"id":          float64(1234),
		"title":       "Data Engineer",
		"company":     "Initech",
		"salary":      float64(95000),
		"description": "<p>Pipelines</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234", job.ID)
	assert.Equal(t, "95000", job.Salary)
	assert.Equal(t, "Pipelines", job.Description)
}

func TestJobFromMap_Nil(t *testing.T) {
	_, err := JobFromMap(nil)
	assert.ErrorIs(t, err, ErrInvalidJob)
}
