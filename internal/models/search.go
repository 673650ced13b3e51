package models

import "time"

type SearchHistoryEntry struct {
	Query     string    `json:"query"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

// SavedSearch is identified by Name; ID only disambiguates entries sharing a name.
type SavedSearch struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Query       string          `json:"query"`
	Location    string          `json:"location"`
	Filters     JobFiltersState `json:"filters"`
	CreatedAt   time.Time       `json:"createdAt"`
	NotifyOnNew bool            `json:"notifyOnNew"`
}

// SearchQuery is what applying a saved search hands back to the caller.
type SearchQuery struct {
	Query    string          `json:"query"`
	Location string          `json:"location"`
	Filters  JobFiltersState `json:"filters"`
}

type SaveSearchRequest struct {
	Name        string          `json:"name" validate:"required|maxLen:100"`
	Query       string          `json:"query" validate:"maxLen:200"`
	Location    string          `json:"location" validate:"maxLen:200"`
	Filters     JobFiltersState `json:"filters"`
	NotifyOnNew bool            `json:"notifyOnNew"`
}

func (r SaveSearchRequest) Messages() map[string]string {
	return map[string]string{
		"name.required": "Search name is required",
		"name.maxLen":   "Search name must be at most 100 characters",
	}
}

type SearchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}
