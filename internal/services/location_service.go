package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"jobdeck/internal/providers"
	"jobdeck/internal/structures"
)

const MinLocationQuery = 2

var ErrSuperseded = errors.New("lookup superseded by a newer one")

type LocationSearcher interface {
	SearchLocations(ctx context.Context, q string) ([]string, error)
}

type LocationServiceInterface interface {
	Lookup(ctx context.Context, profile string, searcher LocationSearcher, q string) ([]string, error)
}

type pendingLookup struct {
	superseded chan struct{}
}

// LocationService debounces lookups per profile: a lookup waits for the debounce delay
// and is abandoned when a newer one for the same profile arrives in the meantime.
type LocationService struct {
	delay  time.Duration
	logger providers.Logger

	mu      sync.Mutex
	pending map[string]*pendingLookup
}

func NewLocationService(conf *structures.Config, logger providers.Logger) *LocationService {
	return &LocationService{
		delay:   conf.Upstream.LocationDebounce,
		logger:  logger,
		pending: make(map[string]*pendingLookup),
	}
}

func (ls *LocationService) Lookup(ctx context.Context, profile string, searcher LocationSearcher, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinLocationQuery {
		return []string{}, nil
	}

	p := &pendingLookup{superseded: make(chan struct{})}
	ls.mu.Lock()
	if prev, ok := ls.pending[profile]; ok {
		close(prev.superseded)
	}
	ls.pending[profile] = p
	ls.mu.Unlock()

	timer := time.NewTimer(ls.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-p.superseded:
		return nil, ErrSuperseded
	case <-ctx.Done():
		ls.release(profile, p)
		return nil, ctx.Err()
	}

	if !ls.release(profile, p) {
		return nil, ErrSuperseded
	}
	ls.logger.Debugf(providers.TypeGet, "Location lookup %q for profile %s", q, profile)
	return searcher.SearchLocations(ctx, q)
}

// release drops p from the pending set. It reports false when p was already superseded.
func (ls *LocationService) release(profile string, p *pendingLookup) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if ls.pending[profile] != p {
		return false
	}
	delete(ls.pending, profile)
	return true
}
