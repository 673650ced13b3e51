package state

import (
	"sync"
	"time"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
	"jobdeck/internal/structures"
)

// Manager owns every store of one profile handle.
type Manager struct {
	kv       interfaces.KVStoreInterface
	logger   providers.Logger
	Saved    *SavedJobsStore
	Recent   *RecentlyViewedStore
	Compare  *ComparisonStore
	Searches *SearchStore
	Session  *SessionStore

	mu          sync.Mutex
	nextID      uint64
	onChange    map[uint64]func(interfaces.ExternalChange)
	onMilestone map[uint64]func(int)
	unsubscribe func()
	reloaders   map[string]string
	reload      map[string]func() error
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for history and saved search timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func NewManager(kv interfaces.KVStoreInterface, conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface, opts ...Option) (*Manager, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	recentLimit := conf.State.RecentLimit
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	historyLimit := conf.State.HistoryLimit
	if historyLimit == 0 {
		historyLimit = DefaultHistoryLimit
	}
	milestones := conf.State.Milestones
	if milestones == nil {
		milestones = DefaultMilestones
	}

	m := &Manager{
		kv:          kv,
		logger:      logger,
		Saved:       newSavedJobsStore(kv, logger, metrics, milestones),
		Recent:      newRecentlyViewedStore(kv, logger, metrics, recentLimit),
		Compare:     newComparisonStore(kv, logger, metrics),
		Searches:    newSearchStore(kv, logger, metrics, historyLimit, o.now),
		Session:     newSessionStore(kv, logger),
		onChange:    make(map[uint64]func(interfaces.ExternalChange)),
		onMilestone: make(map[uint64]func(int)),
	}
	m.Saved.onMilestone = m.fireMilestone

	m.reload = map[string]func() error{
		"saved":    func() error { return m.Saved.load(false) },
		"recent":   m.Recent.load,
		"compare":  m.Compare.load,
		"searches": m.Searches.load,
		"session":  m.Session.load,
	}
	m.reloaders = map[string]string{
		KeySavedJobs:        "saved",
		KeySavedJobsObjects: "saved",
		KeyRecentlyViewed:   "recent",
		KeyCompareJobs:      "compare",
		KeySearchHistory:    "searches",
		KeySavedSearches:    "searches",
		KeyToken:            "session",
		KeyUser:             "session",
	}

	if err := m.Saved.load(true); err != nil {
		return nil, err
	}
	for _, name := range []string{"recent", "compare", "searches", "session"} {
		if err := m.reload[name](); err != nil {
			return nil, err
		}
	}

	m.unsubscribe = kv.Subscribe(m.handleExternalChange)
	return m, nil
}

// handleExternalChange reloads the stores owning the changed keys, then tells listeners.
// The last write wins; nothing is merged.
func (m *Manager) handleExternalChange(change interfaces.ExternalChange) {
	done := make(map[string]bool)
	for _, key := range change.Keys {
		name, ok := m.reloaders[key]
		if !ok || done[name] {
			continue
		}
		done[name] = true
		if err := m.reload[name](); err != nil {
			m.logger.Errorf(providers.TypeStorage, "Profile %s: reloading %s failed: %s", change.Profile, name, err)
		}
	}

	m.mu.Lock()
	listeners := make([]func(interfaces.ExternalChange), 0, len(m.onChange))
	for _, fn := range m.onChange {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(change)
	}
}

// OnExternalChange registers fn for changes made through other handles of the profile.
func (m *Manager) OnExternalChange(fn func(interfaces.ExternalChange)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.onChange[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.onChange, id)
	}
}

// OnMilestone registers fn for saves that bring the saved count to a milestone.
func (m *Manager) OnMilestone(fn func(count int)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.onMilestone[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.onMilestone, id)
	}
}

func (m *Manager) fireMilestone(count int) {
	m.mu.Lock()
	listeners := make([]func(int), 0, len(m.onMilestone))
	for _, fn := range m.onMilestone {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(count)
	}
}

// Token lets the manager act as the token source of an upstream client.
func (m *Manager) Token() string {
	return m.Session.Token()
}

func (m *Manager) ClearToken() error {
	return m.Session.ClearToken()
}

// UserID is the signed-in user's id, or empty without a session.
func (m *Manager) UserID() string {
	user, ok := m.Session.User()
	if !ok {
		return ""
	}
	return user.ID
}

func (m *Manager) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return m.kv.Close()
}
