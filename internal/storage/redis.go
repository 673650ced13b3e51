package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 5 * time.Second

// RedisBackend keeps one redis string per profile key. Writes are MULTI/EXEC transactions
// that also publish the written keys, so every daemon sharing the instance learns about them.
type RedisBackend struct {
	client  *redis.Client
	prefix  string
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	hub     *hub
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewRedisBackend(redisURL, prefix string, logger providers.Logger, metrics providers.MetricsProviderInterface) (*RedisBackend, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := redis.NewClient(opts)
	pingCtx, pingCancel := context.WithTimeout(ctx, redisOpTimeout)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		cancel()
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	b := &RedisBackend{
		client:  client,
		prefix:  prefix,
		logger:  logger,
		metrics: metrics,
		hub:     newHub(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	b.pubsub = client.PSubscribe(ctx, b.changesPattern())
	if _, err := b.pubsub.Receive(pingCtx); err != nil {
		cancel()
		b.pubsub.Close()
		client.Close()
		return nil, fmt.Errorf("redis subscribe failed: %w", err)
	}
	go b.listen()
	return b, nil
}

func (b *RedisBackend) key(profile, key string) string {
	return b.prefix + ":" + profile + ":" + key
}

func (b *RedisBackend) changesChannel(profile string) string {
	return b.prefix + ":" + profile + ":changes"
}

func (b *RedisBackend) changesPattern() string {
	return b.prefix + ":*:changes"
}

func (b *RedisBackend) profilesKey() string {
	return b.prefix + ":profiles"
}

func (b *RedisBackend) listen() {
	defer close(b.done)
	for msg := range b.pubsub.Channel() {
		var change changeMessage
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			b.logger.Warnf(providers.TypeStorage, "Malformed change message on %s: %s", msg.Channel, err)
			continue
		}
		b.hub.publish(change.Profile, change.Origin, change.Keys)
	}
}

func (b *RedisBackend) Open(profile string) (interfaces.KVStoreInterface, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := b.client.SAdd(ctx, b.profilesKey(), profile).Err(); err != nil {
		return nil, fmt.Errorf("register profile %s: %w", profile, err)
	}
	return newHandle(profile, b, b.hub), nil
}

func (b *RedisBackend) get(profile, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	v, err := b.client.Get(ctx, b.key(profile, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (b *RedisBackend) write(profile, origin string, values map[string]string, deletes []string) error {
	keys := writtenKeys(values, deletes)
	payload, err := json.Marshal(changeMessage{Profile: profile, Origin: origin, Keys: keys})
	if err != nil {
		return err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, b.key(profile, k), v, 0)
		}
		if len(deletes) > 0 {
			full := make([]string, len(deletes))
			for i, k := range deletes {
				full[i] = b.key(profile, k)
			}
			pipe.Del(ctx, full...)
		}
		pipe.Publish(ctx, b.changesChannel(profile), payload)
		return nil
	})
	b.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		b.logger.Errorf(providers.TypeStorage, "Profile %s: redis write failed: %s", profile, err)
		return fmt.Errorf("persist profile %s: %w", profile, err)
	}
	return nil
}

func (b *RedisBackend) Profiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	profiles, err := b.client.SMembers(ctx, b.profilesKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(profiles)
	return profiles, nil
}

// Flush is a no-op: every write is already durable in redis.
func (b *RedisBackend) Flush() error { return nil }

func (b *RedisBackend) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	<-b.done
	if cerr := b.client.Close(); err == nil {
		err = cerr
	}
	return err
}

// writtenKeys lists every key touched by a write, sorted.
func writtenKeys(values map[string]string, deletes []string) []string {
	keys := make([]string, 0, len(values)+len(deletes))
	for k := range values {
		keys = append(keys, k)
	}
	keys = append(keys, deletes...)
	sort.Strings(keys)
	return keys
}
