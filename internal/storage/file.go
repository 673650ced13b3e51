package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"jobdeck/internal/providers"
	"jobdeck/internal/storage/interfaces"

	json "github.com/goccy/go-json"
)

const (
	snapshotVersion = 1
	snapshotSuffix  = ".state.zst"
)

type snapshot struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

type fileProfile struct {
	values  map[string]string
	modTime time.Time
	size    int64
}

// FileBackend stores each profile as one compressed JSON snapshot. Every write rewrites
// the whole snapshot, so SetMany is atomic on disk.
type FileBackend struct {
	mu         sync.Mutex
	dir        string
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	metrics    providers.MetricsProviderInterface
	profiles   map[string]*fileProfile
	hub        *hub
}

func NewFileBackend(dir string, compressor interfaces.CompressorInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &FileBackend{
		dir:        dir,
		compressor: compressor,
		logger:     logger,
		metrics:    metrics,
		profiles:   make(map[string]*fileProfile),
		hub:        newHub(),
	}, nil
}

func (b *FileBackend) path(profile string) string {
	return filepath.Join(b.dir, profile+snapshotSuffix)
}

func (b *FileBackend) Open(profile string) (interfaces.KVStoreInterface, error) {
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.loaded(profile)
	b.mu.Unlock()
	return newHandle(profile, b, b.hub), nil
}

// loaded returns the in-memory profile, reading it from disk on first use. Callers hold b.mu.
func (b *FileBackend) loaded(profile string) *fileProfile {
	if p, ok := b.profiles[profile]; ok {
		return p
	}
	p := &fileProfile{values: make(map[string]string)}
	info, err := os.Stat(b.path(profile))
	if err == nil {
		p.modTime, p.size = info.ModTime(), info.Size()
		values, err := b.read(profile)
		if err != nil {
			b.logger.Warnf(providers.TypeStorage, "Profile %s: unreadable snapshot, starting empty: %s", profile, err)
		} else {
			p.values = values
		}
	} else if !os.IsNotExist(err) {
		b.logger.Warnf(providers.TypeStorage, "Profile %s: cannot stat snapshot, starting empty: %s", profile, err)
	}
	b.profiles[profile] = p
	return p
}

func (b *FileBackend) read(profile string) (map[string]string, error) {
	data, err := os.ReadFile(b.path(profile))
	if err != nil {
		return nil, err
	}
	return b.decode(profile, data)
}

func (b *FileBackend) decode(profile string, data []byte) (map[string]string, error) {
	raw, err := b.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err == nil && snap.Version > 0 {
		if snap.Version > snapshotVersion {
			b.logger.Warnf(providers.TypeStorage, "Profile %s: snapshot version %d is newer than %d", profile, snap.Version, snapshotVersion)
		}
		if snap.Values == nil {
			snap.Values = make(map[string]string)
		}
		return snap.Values, nil
	}

	// version 0 was a bare key/value object
	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]string)
	}
	b.logger.Warnf(providers.TypeStorage, "Profile %s: migrated snapshot from version 0", profile)
	return values, nil
}

func (b *FileBackend) persist(profile string, values map[string]string) (os.FileInfo, error) {
	start := time.Now()
	defer func() { b.metrics.ObservePersistenceDuration(time.Since(start)) }()

	jsonData, err := json.Marshal(snapshot{Version: snapshotVersion, Values: values})
	if err != nil {
		return nil, err
	}
	data, err := b.compressor.Compress(jsonData)
	if err != nil {
		return nil, err
	}

	fileName := b.path(profile)
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return nil, err
	}
	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return nil, err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return nil, err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return nil, err
	}
	if err = os.Rename(tmpFile, fileName); err != nil {
		os.Remove(tmpFile)
		return nil, err
	}
	return os.Stat(fileName)
}

func (b *FileBackend) get(profile, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.loaded(profile).values[key]
	return v, ok, nil
}

// syncLocked reloads the profile when its snapshot changed on disk since it was last read
// or written here, and returns the keys that differ. Callers hold b.mu.
func (b *FileBackend) syncLocked(profile string, p *fileProfile) []string {
	info, err := os.Stat(b.path(profile))
	if err != nil {
		if !os.IsNotExist(err) || p.modTime.IsZero() {
			return nil
		}
		// removed on disk
		keys := changedKeys(p.values, nil)
		p.values = make(map[string]string)
		p.modTime, p.size = time.Time{}, 0
		return keys
	}
	if info.ModTime().Equal(p.modTime) && info.Size() == p.size {
		return nil
	}
	p.modTime, p.size = info.ModTime(), info.Size()
	values, err := b.read(profile)
	if err != nil {
		b.logger.Warnf(providers.TypeStorage, "Profile %s: ignoring unreadable external snapshot: %s", profile, err)
		return nil
	}
	keys := changedKeys(p.values, values)
	p.values = values
	return keys
}

func (b *FileBackend) write(profile, origin string, values map[string]string, deletes []string) error {
	b.mu.Lock()
	p := b.loaded(profile)
	external := b.syncLocked(profile, p)
	next, changed := applyWrite(p.values, values, deletes)
	if len(changed) == 0 {
		b.mu.Unlock()
		b.publishExternal(profile, external)
		return nil
	}
	info, err := b.persist(profile, next)
	if err != nil {
		b.mu.Unlock()
		b.logger.Errorf(providers.TypeStorage, "Profile %s: failed to write snapshot: %s", profile, err)
		b.publishExternal(profile, external)
		return fmt.Errorf("persist profile %s: %w", profile, err)
	}
	p.values = next
	p.modTime, p.size = info.ModTime(), info.Size()
	b.mu.Unlock()

	b.publishExternal(profile, external)
	b.hub.publish(profile, origin, changed)
	return nil
}

func (b *FileBackend) publishExternal(profile string, keys []string) {
	if len(keys) == 0 {
		return
	}
	b.logger.Debugf(providers.TypeStorage, "Profile %s: external change of %s", profile, strings.Join(keys, ","))
	b.hub.publish(profile, "", keys)
}

// Watch picks up snapshots rewritten by other processes and notifies every handle of the
// keys that changed.
func (b *FileBackend) Watch() {
	b.publishAll(b.syncAll())
}

type externalChange struct {
	profile string
	keys    []string
}

func (b *FileBackend) syncAll() []externalChange {
	b.mu.Lock()
	defer b.mu.Unlock()
	var events []externalChange
	for profile, p := range b.profiles {
		if keys := b.syncLocked(profile, p); len(keys) > 0 {
			events = append(events, externalChange{profile, keys})
		}
	}
	return events
}

func (b *FileBackend) publishAll(events []externalChange) {
	for _, e := range events {
		b.publishExternal(e.profile, e.keys)
	}
}

func (b *FileBackend) Profiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(b.dir, "*"+snapshotSuffix))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	b.mu.Lock()
	for p := range b.profiles {
		seen[p] = struct{}{}
	}
	b.mu.Unlock()
	for _, m := range matches {
		name := strings.TrimSuffix(filepath.Base(m), snapshotSuffix)
		if ValidateProfile(name) == nil {
			seen[name] = struct{}{}
		}
	}
	profiles := make([]string, 0, len(seen))
	for p := range seen {
		profiles = append(profiles, p)
	}
	sort.Strings(profiles)
	return profiles, nil
}

// Flush rewrites every loaded profile that has data or already exists on disk. Snapshots
// changed by other processes are reloaded first so their keys survive the rewrite.
func (b *FileBackend) Flush() error {
	var events []externalChange
	var errs []error

	b.mu.Lock()
	for profile, p := range b.profiles {
		if keys := b.syncLocked(profile, p); len(keys) > 0 {
			events = append(events, externalChange{profile, keys})
		}
		if len(p.values) == 0 && p.modTime.IsZero() {
			continue
		}
		info, err := b.persist(profile, p.values)
		if err != nil {
			errs = append(errs, fmt.Errorf("profile %s: %w", profile, err))
			continue
		}
		p.modTime, p.size = info.ModTime(), info.Size()
	}
	b.mu.Unlock()

	b.publishAll(events)
	return errors.Join(errs...)
}

func (b *FileBackend) Close() error {
	err := b.Flush()
	b.compressor.Close()
	return err
}
