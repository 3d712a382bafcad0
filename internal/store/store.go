package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the single source of truth for the location list. Mutations are written through
// the backend first and replayed on the in-memory copy once accepted.
type Store struct {
	backend Backend
	log     *zap.Logger
	newID   func() string

	writeMu sync.Mutex

	mu        sync.RWMutex
	locations []models.Location
	version   uint64
	loaded    bool

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
}

type Option func(*Store)

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func New(backend Backend, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		backend:     backend,
		log:         logger,
		newID:       uuid.NewString,
		locations:   []models.Location{},
		subscribers: make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run loads the initial snapshot and follows backend change notifications until ctx is done.
func (s *Store) Run(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	err := s.backend.Watch(ctx, func(version uint64) {
		if version != 0 && version <= s.Version() {
			return
		}
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("Sync refresh failed", zap.Error(err))
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch backend: %w", err)
	}

	return nil
}

// Refresh refetches the full snapshot from the backend.
func (s *Store) Refresh(ctx context.Context) error {
	snapshot, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	if s.loaded && snapshot.Version != 0 && snapshot.Version < s.version {
		current := s.version
		s.mu.Unlock()
		s.log.Debug("Ignoring stale snapshot", zap.Uint64("version", snapshot.Version), zap.Uint64("current", current))
		return nil
	}
	changed := !s.loaded || snapshot.Version != s.version
	s.locations = normalize(snapshot.Locations)
	s.version = snapshot.Version
	s.loaded = true
	s.mu.Unlock()

	if changed {
		s.log.Info("Synced data from backend", zap.Uint64("version", snapshot.Version), zap.Int("locations", len(snapshot.Locations)))
		s.publish(Event{Version: snapshot.Version, Source: SourceRemote})
	}

	return nil
}

func (s *Store) Locations() []models.Location {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.CloneLocations(s.locations)
}

func (s *Store) Location(id string) (models.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.locations {
		if l.ID == id {
			return l.Clone(), true
		}
	}

	return models.Location{}, false
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Snapshot{Version: s.version, Locations: models.CloneLocations(s.locations)}
}

func (s *Store) AddLocation(ctx context.Context, location models.Location, opts ...MutationOption) (models.Location, error) {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return models.Location{}, fmt.Errorf("location name is required: %w", custom_error.ErrInvalidInput)
	}
	if location.ID == "" {
		location.ID = s.newID()
	}

	splitters := make([]models.Splitter, 0, len(location.Splitters))
	seen := make(map[string]bool, len(location.Splitters))
	for _, sp := range location.Splitters {
		sp, err := s.prepareSplitter(location.ID, sp)
		if err != nil {
			return models.Location{}, err
		}
		if seen[sp.ID] {
			return models.Location{}, fmt.Errorf("splitter %s: %w", sp.ID, custom_error.ErrDuplicateSplitter)
		}
		seen[sp.ID] = true
		splitters = append(splitters, sp)
	}
	location.Splitters = splitters

	change := models.Change{Kind: models.ChangeAddLocation, LocationID: location.ID, Location: &location}
	if err := s.mutate(ctx, change, opts); err != nil {
		return models.Location{}, err
	}

	return location.Clone(), nil
}

func (s *Store) UpdateLocation(ctx context.Context, id string, patch models.LocationPatch, opts ...MutationOption) (models.Location, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return models.Location{}, fmt.Errorf("location name is required: %w", custom_error.ErrInvalidInput)
		}
		patch.Name = &name
	}

	current, err := s.lookup(ctx, id)
	if err != nil {
		return models.Location{}, err
	}
	updated := patch.Merge(current)

	change := models.Change{Kind: models.ChangeUpdateLocation, LocationID: id, Location: &updated}
	if err := s.mutate(ctx, change, opts); err != nil {
		return models.Location{}, err
	}

	if fresh, ok := s.Location(id); ok {
		return fresh, nil
	}

	return updated, nil
}

func (s *Store) DeleteLocation(ctx context.Context, id string, opts ...MutationOption) error {
	return s.mutate(ctx, models.Change{Kind: models.ChangeDeleteLocation, LocationID: id}, opts)
}

func (s *Store) AddSplitter(ctx context.Context, locationID string, splitter models.Splitter, opts ...MutationOption) (models.Splitter, error) {
	splitter, err := s.prepareSplitter(locationID, splitter)
	if err != nil {
		return models.Splitter{}, err
	}

	change := models.Change{Kind: models.ChangeAddSplitter, LocationID: locationID, SplitterID: splitter.ID, Splitter: &splitter}
	if err := s.mutate(ctx, change, opts); err != nil {
		return models.Splitter{}, err
	}

	return splitter, nil
}

func (s *Store) UpdateSplitter(ctx context.Context, locationID, splitterID string, splitter models.Splitter, opts ...MutationOption) (models.Splitter, error) {
	splitter.ID = splitterID
	splitter, err := s.prepareSplitter(locationID, splitter)
	if err != nil {
		return models.Splitter{}, err
	}

	change := models.Change{Kind: models.ChangeUpdateSplitter, LocationID: locationID, SplitterID: splitterID, Splitter: &splitter}
	if err := s.mutate(ctx, change, opts); err != nil {
		return models.Splitter{}, err
	}

	return splitter, nil
}

func (s *Store) DeleteSplitter(ctx context.Context, locationID, splitterID string, opts ...MutationOption) error {
	return s.mutate(ctx, models.Change{Kind: models.ChangeDeleteSplitter, LocationID: locationID, SplitterID: splitterID}, opts)
}

// Subscribe returns a channel receiving an Event for every new version. Slow subscribers
// only see the latest events; the returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 4)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) mutate(ctx context.Context, change models.Change, opts []MutationOption) error {
	var cfg mutationConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	change.ExpectedVersion = cfg.ifVersion

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	version, err := s.backend.Apply(ctx, change)
	if err != nil {
		s.log.Warn("Persisting change failed", zap.String("kind", string(change.Kind)), zap.String("location_id", change.LocationID), zap.Error(err))
		return fmt.Errorf("%s: %w", change.Kind, err)
	}

	s.mu.Lock()
	next, applyErr := change.ApplyTo(s.locations)
	inSync := applyErr == nil && s.loaded && version == s.version+1
	if inSync {
		s.locations = next
		s.version = version
	}
	s.mu.Unlock()

	if !inSync {
		// Another writer landed in between; the persisted state is authoritative.
		if err := s.Refresh(ctx); err != nil {
			return fmt.Errorf("%s persisted but refresh failed: %w", change.Kind, err)
		}
		return nil
	}

	s.log.Debug("Data saved", zap.String("kind", string(change.Kind)), zap.Uint64("version", version))
	s.publish(Event{Version: version, Source: SourceLocal, Kind: change.Kind})

	return nil
}

func (s *Store) lookup(ctx context.Context, id string) (models.Location, error) {
	if loc, ok := s.Location(id); ok {
		return loc, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return models.Location{}, err
	}
	if loc, ok := s.Location(id); ok {
		return loc, nil
	}

	return models.Location{}, fmt.Errorf("location %s: %w", id, custom_error.ErrLocationNotFound)
}

func (s *Store) prepareSplitter(locationID string, sp models.Splitter) (models.Splitter, error) {
	sp.Model = strings.TrimSpace(sp.Model)
	sp.Port = models.FormatPort(sp.Port)
	sp.Notes = strings.TrimSpace(sp.Notes)
	if sp.Model == "" || sp.Port == "" {
		return models.Splitter{}, fmt.Errorf("splitter model and port are required: %w", custom_error.ErrInvalidInput)
	}
	if !models.ValidPort(sp.Port) {
		return models.Splitter{}, fmt.Errorf("port %q must look like 7/9: %w", sp.Port, custom_error.ErrInvalidInput)
	}
	if sp.ID == "" {
		sp.ID = s.newID()
	}
	sp.LocationID = locationID

	return sp, nil
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func normalize(locations []models.Location) []models.Location {
	out := models.CloneLocations(locations)
	for i := range out {
		for j := range out[i].Splitters {
			out[i].Splitters[j].LocationID = out[i].ID
		}
	}

	return out
}

// IsNotFound reports whether err means the addressed location or splitter does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, custom_error.ErrLocationNotFound) || errors.Is(err, custom_error.ErrSplitterNotFound)
}
