package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"jobdeck/internal/models"
	"jobdeck/internal/providers"
	"jobdeck/internal/structures"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

const (
	defaultStaleTime    = 10 * time.Minute
	defaultFetchTimeout = 30 * time.Second
)

type JobSearcher interface {
	SearchJobs(ctx context.Context, query, location string) ([]models.JobRecord, error)
}

type SearchResult struct {
	Jobs      []models.JobRecord `json:"jobs"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Stale     bool               `json:"stale"`
	Warning   string             `json:"warning,omitempty"`
}

type cachedSearch struct {
	Jobs      []models.JobRecord `json:"jobs"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

type SearchServiceInterface interface {
	Search(ctx context.Context, searcher JobSearcher, query, location string) (SearchResult, error)
	Refresh(ctx context.Context, searcher JobSearcher, query, location string) (SearchResult, error)
	Wait()
}

// SearchService serves job search results stale-while-revalidate. Entries younger than
// staleTime are served as is; older ones are served while one background refetch per key
// replaces them.
type SearchService struct {
	cache     providers.CacheProviderInterface
	logger    providers.Logger
	staleTime time.Duration
	timeout   time.Duration
	now       func() time.Time

	group      singleflight.Group
	mu         sync.Mutex
	refreshing map[string]struct{}
	wg         sync.WaitGroup
}

func NewSearchService(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) *SearchService {
	staleTime := conf.Upstream.StaleTime
	if staleTime <= 0 {
		staleTime = defaultStaleTime
	}
	timeout := conf.Upstream.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &SearchService{
		cache:      cache,
		logger:     logger,
		staleTime:  staleTime,
		timeout:    timeout,
		now:        time.Now,
		refreshing: make(map[string]struct{}),
	}
}

func searchKey(query, location string) string {
	return "search:" + strings.ToLower(strings.TrimSpace(query)) + "|" + strings.ToLower(strings.TrimSpace(location))
}

func (ss *SearchService) lookup(key string) (cachedSearch, bool) {
	raw, ok := ss.cache.Get(key)
	if !ok {
		return cachedSearch{}, false
	}
	var entry cachedSearch
	if err := json.Unmarshal(raw, &entry); err != nil {
		ss.logger.Warnf(providers.TypeApp, "Dropping unreadable cache entry %s: %s", key, err)
		ss.cache.Del(key)
		return cachedSearch{}, false
	}
	return entry, true
}

func (ss *SearchService) Search(ctx context.Context, searcher JobSearcher, query, location string) (SearchResult, error) {
	key := searchKey(query, location)
	if entry, ok := ss.lookup(key); ok {
		if ss.now().Sub(entry.FetchedAt) < ss.staleTime {
			return SearchResult{Jobs: entry.Jobs, FetchedAt: entry.FetchedAt}, nil
		}
		ss.revalidate(key, searcher, query, location)
		return SearchResult{Jobs: entry.Jobs, FetchedAt: entry.FetchedAt, Stale: true}, nil
	}

	entry, err := ss.fetch(ctx, key, searcher, query, location)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Jobs: entry.Jobs, FetchedAt: entry.FetchedAt}, nil
}

// Refresh fetches now. When the fetch fails and an older entry exists, that entry is
// returned with a warning instead of the error.
func (ss *SearchService) Refresh(ctx context.Context, searcher JobSearcher, query, location string) (SearchResult, error) {
	key := searchKey(query, location)
	entry, err := ss.fetch(ctx, key, searcher, query, location)
	if err == nil {
		return SearchResult{Jobs: entry.Jobs, FetchedAt: entry.FetchedAt}, nil
	}
	if cached, ok := ss.lookup(key); ok {
		ss.logger.Warnf(providers.TypeApp, "Refreshing %s failed, serving cached results: %s", key, err)
		return SearchResult{Jobs: cached.Jobs, FetchedAt: cached.FetchedAt, Stale: true, Warning: err.Error()}, nil
	}
	return SearchResult{}, err
}

func (ss *SearchService) fetch(ctx context.Context, key string, searcher JobSearcher, query, location string) (cachedSearch, error) {
	v, err, _ := ss.group.Do(key, func() (interface{}, error) {
		jobs, err := searcher.SearchJobs(ctx, query, location)
		if err != nil {
			return nil, err
		}
		if jobs == nil {
			jobs = []models.JobRecord{}
		}
		entry := cachedSearch{Jobs: jobs, FetchedAt: ss.now()}
		raw, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		ss.cache.Set(key, raw)
		return entry, nil
	})
	if err != nil {
		return cachedSearch{}, err
	}
	return v.(cachedSearch), nil
}

// revalidate starts a background refetch unless one is already running for key.
func (ss *SearchService) revalidate(key string, searcher JobSearcher, query, location string) {
	ss.mu.Lock()
	if _, busy := ss.refreshing[key]; busy {
		ss.mu.Unlock()
		return
	}
	ss.refreshing[key] = struct{}{}
	ss.wg.Add(1)
	ss.mu.Unlock()

	go func() {
		defer ss.wg.Done()
		defer func() {
			ss.mu.Lock()
			delete(ss.refreshing, key)
			ss.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), ss.timeout)
		defer cancel()
		if _, err := ss.fetch(ctx, key, searcher, query, location); err != nil {
			ss.logger.Warnf(providers.TypeApp, "Background refresh of %s failed, keeping stale results: %s", key, err)
		}
	}()
}

// Wait blocks until running background refetches finish.
func (ss *SearchService) Wait() {
	ss.wg.Wait()
}
