package services

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"jobdeck/internal/providers"
	"jobdeck/internal/remote"
	"jobdeck/internal/state"
	"jobdeck/internal/storage"
	"jobdeck/internal/storage/interfaces"
	"jobdeck/internal/structures"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

const DefaultProfile = "default"

var ErrServiceClosed = errors.New("profile service closed")

// Profile is one open key space: its state stores and its upstream session.
type Profile struct {
	Name   string
	State  *state.Manager
	Remote *remote.Session

	lastUsed *atomic.Int64
	seed     *atomic.Int64
}

// Seed drives the browse shuffle; it only changes on Refresh so paging stays stable.
func (p *Profile) Seed() int64 {
	return p.seed.Load()
}

func (p *Profile) touch(now time.Time) {
	p.lastUsed.Store(now.UnixNano())
}

type ProfileServiceInterface interface {
	Open(name string) (*Profile, error)
	Refresh(p *Profile) int64
	Profiles() []string
	Stored() ([]string, error)
	ProfileCount() int
	EvictIdle(ttl time.Duration) int
	Close() error
}

type ProfileService struct {
	conf    *structures.Config
	backend interfaces.BackendInterface
	client  *remote.Client
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	loading  singleflight.Group
	mu       sync.Mutex
	profiles map[string]*Profile
	closed   bool
	now      func() time.Time
}

func NewProfileService(conf *structures.Config, backend interfaces.BackendInterface, client *remote.Client, logger providers.Logger, metrics providers.MetricsProviderInterface) *ProfileService {
	return &ProfileService{
		conf:     conf,
		backend:  backend,
		client:   client,
		logger:   logger,
		metrics:  metrics,
		profiles: make(map[string]*Profile),
		now:      time.Now,
	}
}

// Open returns the named profile, loading it on first use. An empty name means the
// default profile. When maxProfiles are open the least recently used one is closed.
// Loading runs outside ps.mu so a slow backend only delays callers of the same name.
func (ps *ProfileService) Open(name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProfile
	}
	if err := storage.ValidateProfile(name); err != nil {
		return nil, err
	}

	if p, found, err := ps.lookup(name); found || err != nil {
		return p, err
	}
	v, err, _ := ps.loading.Do(name, func() (interface{}, error) {
		if p, found, err := ps.lookup(name); found || err != nil {
			return p, err
		}
		p, err := ps.load(name)
		if err != nil {
			return nil, err
		}
		return ps.register(p)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Profile), nil
}

// lookup reports an already open profile, or ErrServiceClosed once Close ran.
func (ps *ProfileService) lookup(name string) (*Profile, bool, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return nil, false, ErrServiceClosed
	}
	if p, ok := ps.profiles[name]; ok {
		p.touch(ps.now())
		return p, true, nil
	}
	return nil, false, nil
}

func (ps *ProfileService) load(name string) (*Profile, error) {
	kv, err := ps.backend.Open(name)
	if err != nil {
		return nil, err
	}
	mgr, err := state.NewManager(kv, ps.conf, ps.logger, ps.metrics)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	now := ps.now()
	p := &Profile{
		Name:     name,
		State:    mgr,
		Remote:   ps.client.Session(mgr),
		lastUsed: atomic.NewInt64(now.UnixNano()),
		seed:     atomic.NewInt64(now.UnixNano()),
	}
	mgr.OnExternalChange(func(change interfaces.ExternalChange) {
		ps.logger.Infof(providers.TypeStorage, "Profile %s reloaded after external change to %s", change.Profile, strings.Join(change.Keys, ", "))
	})
	mgr.OnMilestone(func(count int) {
		ps.logger.Infof(providers.TypeApp, "Profile %s saved %d jobs", name, count)
	})
	return p, nil
}

func (ps *ProfileService) register(p *Profile) (*Profile, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		_ = p.State.Close()
		return nil, ErrServiceClosed
	}
	if limit := ps.conf.State.MaxProfiles; limit > 0 && len(ps.profiles) >= limit {
		ps.evictOldestLocked()
	}
	ps.profiles[p.Name] = p
	ps.logger.Debugf(providers.TypeStorage, "Opened profile %s", p.Name)
	return p, nil
}

func (ps *ProfileService) evictOldestLocked() {
	var oldest *Profile
	for _, p := range ps.profiles {
		if oldest == nil || p.lastUsed.Load() < oldest.lastUsed.Load() {
			oldest = p
		}
	}
	if oldest != nil {
		ps.closeLocked(oldest)
		ps.logger.Warnf(providers.TypeStorage, "Profile limit %d reached, closed %s", ps.conf.State.MaxProfiles, oldest.Name)
	}
}

func (ps *ProfileService) closeLocked(p *Profile) {
	delete(ps.profiles, p.Name)
	if err := p.State.Close(); err != nil {
		ps.logger.Errorf(providers.TypeStorage, "Closing profile %s: %s", p.Name, err)
	}
}

// Refresh picks a new shuffle seed for the profile and returns it.
func (ps *ProfileService) Refresh(p *Profile) int64 {
	next := ps.now().UnixNano()
	if next == p.seed.Load() {
		next++
	}
	p.seed.Store(next)
	return next
}

// Profiles lists the open profiles.
func (ps *ProfileService) Profiles() []string {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	names := make([]string, 0, len(ps.profiles))
	for name := range ps.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stored lists the profiles the backend holds data for.
func (ps *ProfileService) Stored() ([]string, error) {
	return ps.backend.Profiles()
}

func (ps *ProfileService) ProfileCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.profiles)
}

// EvictIdle closes profiles unused for longer than ttl. Their data stays in the backend.
func (ps *ProfileService) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := ps.now().Add(-ttl).UnixNano()

	ps.mu.Lock()
	defer ps.mu.Unlock()
	n := 0
	for _, p := range ps.profiles {
		if p.lastUsed.Load() < cutoff {
			ps.closeLocked(p)
			n++
		}
	}
	return n
}

func (ps *ProfileService) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.closed = true
	var errs []error
	for _, p := range ps.profiles {
		if err := p.State.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(ps.profiles, p.Name)
	}
	return errors.Join(errs...)
}
