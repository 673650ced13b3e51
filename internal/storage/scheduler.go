package storage

import (
	"sync"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
	"jobdeck/internal/structures"

	"github.com/roylee0704/gron"
)

// watcher is implemented by backends that must poll for changes made by other processes.
type watcher interface {
	Watch()
}

type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	backend interfaces.BackendInterface
	evictor interfaces.IdleEvictor
	cron    *gron.Cron
	opsMu   sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	if w, ok := s.backend.(watcher); ok && s.config.Storage.WatchInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Storage.WatchInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()
			w.Watch()
		})
	}

	if s.evictor != nil && s.config.State.ProfileTTL > 0 && s.config.State.EvictInterval > 0 {
		ttl := s.config.State.ProfileTTL
		s.cron.AddFunc(gron.Every(s.config.State.EvictInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()
			if n := s.evictor.EvictIdle(ttl); n > 0 {
				s.logger.Infof(providers.TypeApp, "Closed %d idle profiles", n)
			}
		})
	}

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Restore checks that the backend is readable and reports the persisted profiles.
func (s *Scheduler) Restore() error {
	profiles, err := s.backend.Profiles()
	if err != nil {
		return err
	}
	s.logger.Infof(providers.TypeApp, "Storage %s holds %d profiles", s.config.Storage.Driver, len(profiles))
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Flushing profiles to storage...")
	if err := s.backend.Flush(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while flushing profiles: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, backend interfaces.BackendInterface, evictor interfaces.IdleEvictor) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		backend: backend,
		evictor: evictor,
	}
}
