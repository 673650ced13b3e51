package interfaces

import "time"

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// IdleEvictor closes profiles that have not been used for ttl and reports how many it closed.
type IdleEvictor interface {
	EvictIdle(ttl time.Duration) int
}
