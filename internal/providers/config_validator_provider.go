package providers

import (
	"errors"
	"jobdeck/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tags first, then the rules that depend on the chosen storage driver.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	switch cv.conf.Storage.Driver {
	case "file":
		if cv.conf.Storage.Dir == "" {
			return errors.New("storage.dir is required for the file driver")
		}
	case "redis":
		if cv.conf.Storage.RedisURL == "" {
			return errors.New("storage.redisURL is required for the redis driver")
		}
	case "postgres":
		if cv.conf.Storage.PostgresURL == "" {
			return errors.New("storage.postgresURL is required for the postgres driver")
		}
	}
	if cv.conf.State.RecentLimit < 0 {
		return errors.New("state.recentLimit must not be negative")
	}
	for _, m := range cv.conf.State.Milestones {
		if m <= 0 {
			return errors.New("state.milestones must be positive")
		}
	}
	return nil
}
