// Package state holds the per-profile client state: saved jobs, recently viewed jobs,
// the comparison set, search history, saved searches and the session. Every store keeps
// its data in memory, persists each mutation synchronously through a KV handle and
// reloads when another handle of the same profile changes one of its keys.
package state

import (
	"errors"
	"fmt"
	"reflect"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"

	json "github.com/goccy/go-json"
)

var (
	ErrRecordRequired   = errors.New("job record required to save")
	ErrInvalidID        = errors.New("job id is required")
	ErrCapacityExceeded = errors.New("comparison is limited to 3 jobs")
	ErrNotFound         = errors.New("not found")
	ErrInvalidName      = errors.New("search name is required")
)

const (
	KeySavedJobs        = "savedJobs"
	KeySavedJobsObjects = "savedJobsObjects"
	KeyRecentlyViewed   = "recentlyViewed"
	KeyCompareJobs      = "compareJobs"
	KeySearchHistory    = "searchHistory"
	KeySavedSearches    = "savedSearches"
	KeyToken            = "token"
	KeyUser             = "user"
)

const (
	MaxCompare          = 3
	DefaultRecentLimit  = 20
	DefaultHistoryLimit = 50
)

var DefaultMilestones = []int{1, 10, 50}

// readJSON decodes key into dst. A missing key leaves dst untouched and an undecodable value
// is logged and reported as missing; only backend failures are returned.
func readJSON(kv interfaces.KVStoreInterface, key string, dst interface{}, logger providers.Logger) (bool, error) {
	raw, ok, err := kv.Get(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		logger.Warnf(providers.TypeStorage, "Discarding corrupt %s: %s", key, err)
		// drop anything decoded before the error
		v := reflect.ValueOf(dst).Elem()
		v.Set(reflect.Zero(v.Type()))
		return false, nil
	}
	return true, nil
}

func encode(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
