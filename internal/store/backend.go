package store

import (
	"context"

	"splitters/pkg/models"
)

// Backend persists the inventory. Apply must bump the persisted version exactly once per
// accepted change and return the new value.
type Backend interface {
	Load(ctx context.Context) (models.Snapshot, error)
	Apply(ctx context.Context, change models.Change) (uint64, error)

	// Watch blocks until ctx is done, calling notify whenever the persisted state may have
	// changed underneath this process. A zero version means "unknown, refetch".
	Watch(ctx context.Context, notify func(version uint64)) error
}

type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Event announces a new store version to subscribers.
type Event struct {
	Version uint64            `json:"version"`
	Source  Source            `json:"source"`
	Kind    models.ChangeKind `json:"kind,omitempty"`
}

type MutationOption func(*mutationConfig)

type mutationConfig struct {
	ifVersion uint64
}

// IfVersion makes the mutation fail with ErrVersionConflict unless the persisted version
// still equals v. Zero disables the check.
func IfVersion(v uint64) MutationOption {
	return func(c *mutationConfig) {
		c.ifVersion = v
	}
}
