package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gookit/validate"
	"github.com/spf13/cast"
)

var ErrInvalidJob = errors.New("invalid job record")

// JobRecord is a snapshot of a listing taken when it was saved, viewed or compared.
// Records are replaced whole, never patched.
type JobRecord struct {
	ID          string `json:"id" validate:"required|maxLen:512"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Type        string `json:"type,omitempty"`
	Salary      string `json:"salary,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty" validate:"fullUrl"`
	Source      string `json:"source,omitempty"`
}

func (j JobRecord) Messages() map[string]string {
	return map[string]string{
		"required": "job id is required",
		"fullUrl":  "job url must be an absolute URL",
	}
}

// SynthesizeJobID builds the fallback identifier used when a listing carries no id.
// Distinct listings with identical title, company and source collide.
func SynthesizeJobID(title, company, source string) string {
	return fmt.Sprintf("%s-%s-%s", orDefault(title, "untitled"), orDefault(company, "company"), orDefault(source, "unknown"))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Normalize trims every field, strips markup from the description, synthesizes a
// missing id and validates the result.
func (j JobRecord) Normalize() (JobRecord, error) {
	j.ID = strings.TrimSpace(j.ID)
	j.Title = collapseSpaces(j.Title)
	j.Company = collapseSpaces(j.Company)
	j.Location = collapseSpaces(j.Location)
	j.Type = collapseSpaces(j.Type)
	j.Salary = strings.TrimSpace(j.Salary)
	j.URL = strings.TrimSpace(j.URL)
	j.Source = strings.TrimSpace(j.Source)
	j.Description = StripHTML(j.Description)

	if j.ID == "" {
		j.ID = SynthesizeJobID(j.Title, j.Company, j.Source)
	}

	v := validate.Struct(&j)
	if !v.Validate() {
		return JobRecord{}, fmt.Errorf("%w: %s", ErrInvalidJob, v.Errors.One())
	}
	return j, nil
}

// JobFromMap converts a loosely typed upstream listing into a JobRecord.
// Numeric fields such as salary are stringified.
func JobFromMap(raw map[string]interface{}) (JobRecord, error) {
	if raw == nil {
		return JobRecord{}, fmt.Errorf("%w: empty listing", ErrInvalidJob)
	}
	job := JobRecord{
		ID:          cast.ToString(raw["id"]),
		Title:       cast.ToString(raw["title"]),
		Company:     cast.ToString(raw["company"]),
		Location:    cast.ToString(raw["location"]),
		Type:        cast.ToString(raw["type"]),
		Salary:      cast.ToString(raw["salary"]),
		Description: cast.ToString(raw["description"]),
		URL:         cast.ToString(raw["url"]),
		Source:      cast.ToString(raw["source"]),
	}
	return job.Normalize()
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\f\r]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

const blockElements = "p, div, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, section, article"

// StripHTML returns the visible text of an HTML fragment. Plain text passes through
// with whitespace normalized.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapseLines(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseLines(s)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return collapseLines(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}
	return strings.TrimSpace(newlineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
