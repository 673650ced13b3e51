package storage

import (
	"fmt"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"
	"jobdeck/internal/structures"
)

func NewBackend(conf *structures.Config, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (interfaces.BackendInterface, error) {
	switch conf.Storage.Driver {
	case "memory":
		return NewMemoryBackend(), nil
	case "file":
		return NewFileBackend(conf.Storage.Dir, compressor, logger, metrics)
	case "redis":
		prefix := conf.Storage.RedisPrefix
		if prefix == "" {
			prefix = "jobdeck"
		}
		return NewRedisBackend(conf.Storage.RedisURL, prefix, logger, metrics)
	case "postgres":
		return NewPostgresBackend(conf.Storage.PostgresURL, logger, metrics)
	}
	return nil, fmt.Errorf("unknown storage driver %q", conf.Storage.Driver)
}
