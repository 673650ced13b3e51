package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	postgresOpTimeout = 5 * time.Second
	notifyChannel     = "jobdeck_changes"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	profile    TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (profile, key)
)`

const upsertEntry = `INSERT INTO kv_entries (profile, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (profile, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

// PostgresBackend stores profile keys as rows of kv_entries. Each write runs in one
// transaction that ends with pg_notify, delivered to listeners on commit.
type PostgresBackend struct {
	pool    *pgxpool.Pool
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	hub     *hub
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPostgresBackend(databaseURL string, logger providers.Logger, metrics providers.MetricsProviderInterface) (*PostgresBackend, error) {
	ctx, cancel := context.WithCancel(context.Background())
	initCtx, initCancel := context.WithTimeout(ctx, postgresOpTimeout)
	defer initCancel()

	pool, err := pgxpool.New(initCtx, databaseURL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(initCtx); err != nil {
		cancel()
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	if _, err := pool.Exec(initCtx, schema); err != nil {
		cancel()
		pool.Close()
		return nil, fmt.Errorf("create kv_entries: %w", err)
	}

	b := &PostgresBackend{
		pool:    pool,
		logger:  logger,
		metrics: metrics,
		hub:     newHub(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go b.listen(ctx)
	return b, nil
}

func (b *PostgresBackend) listen(ctx context.Context) {
	defer close(b.done)
	for ctx.Err() == nil {
		if err := b.listenOnce(ctx); err != nil && ctx.Err() == nil {
			b.logger.Errorf(providers.TypeStorage, "Postgres listener failed, reconnecting: %s", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (b *PostgresBackend) listenOnce(ctx context.Context) error {
	conn, err := b.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var change changeMessage
		if err := json.Unmarshal([]byte(n.Payload), &change); err != nil {
			b.logger.Warnf(providers.TypeStorage, "Malformed change notification: %s", err)
			continue
		}
		b.hub.publish(change.Profile, change.Origin, change.Keys)
	}
}

func (b *PostgresBackend) Open(profile string) (interfaces.KVStoreInterface, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	return newHandle(profile, b, b.hub), nil
}

func (b *PostgresBackend) get(profile, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), postgresOpTimeout)
	defer cancel()

	var value string
	err := b.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE profile = $1 AND key = $2`, profile, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (b *PostgresBackend) write(profile, origin string, values map[string]string, deletes []string) error {
	payload, err := json.Marshal(changeMessage{Profile: profile, Origin: origin, Keys: writtenKeys(values, deletes)})
	if err != nil {
		return err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), postgresOpTimeout)
	defer cancel()
	err = pgx.BeginFunc(ctx, b.pool, func(tx pgx.Tx) error {
		for k, v := range values {
			if _, err := tx.Exec(ctx, upsertEntry, profile, k, v); err != nil {
				return err
			}
		}
		if len(deletes) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM kv_entries WHERE profile = $1 AND key = ANY($2)`, profile, deletes); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload))
		return err
	})
	b.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		b.logger.Errorf(providers.TypeStorage, "Profile %s: postgres write failed: %s", profile, err)
		return fmt.Errorf("persist profile %s: %w", profile, err)
	}
	return nil
}

func (b *PostgresBackend) Profiles() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), postgresOpTimeout)
	defer cancel()
	rows, err := b.pool.Query(ctx, `SELECT DISTINCT profile FROM kv_entries ORDER BY profile`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (b *PostgresBackend) Flush() error { return nil }

func (b *PostgresBackend) Close() error {
	b.cancel()
	<-b.done
	b.pool.Close()
	return nil
}
