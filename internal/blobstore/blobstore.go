package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// CurrentDataVersion is the blob schema version. Blobs written with an older value are
// discarded and re-seeded on first read.
const CurrentDataVersion = 2

const DefaultPollInterval = 3 * time.Second

type blob struct {
	DataVersion int               `json:"data_version"`
	Version     uint64            `json:"version"`
	Locations   []models.Location `json:"locations"`
}

// Blobstore keeps the whole inventory as one JSON document on disk. Every write replaces
// the file atomically and bumps the version counter, which other processes watch.
type Blobstore struct {
	path         string
	pollInterval time.Duration
	seed         func() []models.Location
	log          *zap.Logger

	// mu serializes this process; fileLock serializes every process sharing path.
	mu       sync.Mutex
	fileLock *flock.Flock
}

type Option func(*Blobstore)

func WithPollInterval(d time.Duration) Option {
	return func(b *Blobstore) {
		b.pollInterval = d
	}
}

// WithSeed sets the data used when the blob is missing or stale.
func WithSeed(seed func() []models.Location) Option {
	return func(b *Blobstore) {
		b.seed = seed
	}
}

func New(path string, logger *zap.Logger, opts ...Option) *Blobstore {
	b := &Blobstore{
		path:         path,
		pollInterval: DefaultPollInterval,
		seed:         func() []models.Location { return []models.Location{} },
		log:          logger,
		fileLock:     flock.New(path + ".lock"),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

func (b *Blobstore) Path() string {
	return b.path
}

func (b *Blobstore) Load(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}

	unlock, err := b.lock(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer unlock()

	data, err := b.readOrInit()
	if err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{Version: data.Version, Locations: data.Locations}, nil
}

func (b *Blobstore) Apply(ctx context.Context, change models.Change) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	unlock, err := b.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	data, err := b.readOrInit()
	if err != nil {
		return 0, err
	}
	if change.ExpectedVersion != 0 && change.ExpectedVersion != data.Version {
		return 0, fmt.Errorf("expected version %d, stored %d: %w", change.ExpectedVersion, data.Version, custom_error.ErrVersionConflict)
	}

	next, err := change.ApplyTo(data.Locations)
	if err != nil {
		return 0, err
	}
	data.Locations = next
	data.Version++

	if err := b.write(data); err != nil {
		return 0, err
	}

	return data.Version, nil
}

// Watch reports version changes made by other processes. File system events give prompt
// notice; the poll ticker covers file systems where events are not delivered.
func (b *Blobstore) Watch(ctx context.Context, notify func(version uint64)) error {
	var events <-chan fsnotify.Event
	var watchErrors <-chan error

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		b.log.Warn("File watcher unavailable, falling back to polling", zap.Error(err))
	} else {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(b.path)); err != nil {
			b.log.Warn("Unable to watch store directory, falling back to polling", zap.String("dir", filepath.Dir(b.path)), zap.Error(err))
		} else {
			events = watcher.Events
			watchErrors = watcher.Errors
		}
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	var lastSeen uint64
	check := func() {
		version, err := b.readVersion()
		if err != nil {
			b.log.Debug("Polling error", zap.Error(err))
			return
		}
		if version > lastSeen {
			lastSeen = version
			notify(version)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(b.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				check()
			}
		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			b.log.Warn("File watcher error", zap.Error(err))
		case <-ticker.C:
			check()
		}
	}
}

// lock holds the process mutex and the sibling .lock file for a whole read-modify-write.
func (b *Blobstore) lock(ctx context.Context) (func(), error) {
	b.mu.Lock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	if _, err := b.fileLock.TryLockContext(ctx, 5*time.Millisecond); err != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("lock store file: %w", err)
	}

	return func() {
		if err := b.fileLock.Unlock(); err != nil {
			b.log.Warn("Unable to release store lock", zap.Error(err))
		}
		b.mu.Unlock()
	}, nil
}

func (b *Blobstore) readOrInit() (blob, error) {
	data, err := b.read()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return blob{}, err
	}

	if err == nil && data.DataVersion >= CurrentDataVersion {
		if data.Locations == nil {
			data.Locations = []models.Location{}
		}
		return data, nil
	}

	if err == nil {
		b.log.Info("Cache cleared - loading fresh data", zap.Int("data_version", data.DataVersion))
	} else {
		b.log.Info("Initialized with default data", zap.String("path", b.path))
	}

	fresh := blob{
		DataVersion: CurrentDataVersion,
		Version:     data.Version + 1,
		Locations:   b.seed(),
	}
	if fresh.Locations == nil {
		fresh.Locations = []models.Location{}
	}
	if err := b.write(fresh); err != nil {
		return blob{}, err
	}

	return fresh, nil
}

func (b *Blobstore) read() (blob, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return blob{}, err
	}

	var data blob
	if err := json.Unmarshal(raw, &data); err != nil {
		return blob{}, fmt.Errorf("decode store file %s: %w", b.path, err)
	}

	return data, nil
}

func (b *Blobstore) readVersion() (uint64, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return 0, err
	}

	var header struct {
		Version uint64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return 0, fmt.Errorf("decode store version: %w", err)
	}

	return header.Version, nil
}

func (b *Blobstore) write(data blob) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".splitters-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}
