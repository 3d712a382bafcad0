package locations

import (
	"context"
	"fmt"

	"splitters/internal/database"
	"splitters/internal/repository"
	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"go.uber.org/zap"
)

// PostgresBackend persists the inventory in the locations and splitters tables. Every
// accepted change bumps sync_state.version once; a trigger on that row publishes the new
// version with NOTIFY.
type PostgresBackend struct {
	repo      *repository.Repository
	dbURL     string
	locations *LocationRepository
	splitters *SplitterRepository
	log       *zap.Logger
}

func NewPostgresBackend(repo *repository.Repository, dbURL string, logger *zap.Logger) *PostgresBackend {
	return &PostgresBackend{
		repo:      repo,
		dbURL:     dbURL,
		locations: NewLocationRepository(),
		splitters: NewSplitterRepository(),
		log:       logger,
	}
}

func versionQuery(q querier) *goqu.SelectDataset {
	return q.From("sync_state").Select("version").Where(goqu.Ex{"id": 1})
}

func bumpVersionQuery(q querier) *goqu.UpdateDataset {
	return q.Update("sync_state").
		Set(goqu.Record{"version": goqu.L("version + 1")}).
		Where(goqu.Ex{"id": 1}).
		Returning("version")
}

func (b *PostgresBackend) Load(ctx context.Context) (models.Snapshot, error) {
	var snapshot models.Snapshot

	err := repository.WithSnapshot(ctx, b.repo.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		if _, err := versionQuery(tx).ScanValContext(ctx, &snapshot.Version); err != nil {
			return fmt.Errorf("read sync version: %w", err)
		}

		locations, err := b.locations.GetLocations(ctx, tx)
		if err != nil {
			return err
		}
		splitters, err := b.splitters.GetSplitters(ctx, tx)
		if err != nil {
			return err
		}

		for i := range locations {
			locations[i].Splitters = splitters[locations[i].ID]
			if locations[i].Splitters == nil {
				locations[i].Splitters = []models.Splitter{}
			}
		}
		snapshot.Locations = locations

		return nil
	})
	if err != nil {
		return models.Snapshot{}, err
	}

	return snapshot, nil
}

func (b *PostgresBackend) Apply(ctx context.Context, change models.Change) (uint64, error) {
	var version uint64

	err := repository.WithTransaction(ctx, b.repo.GoquDBWrapper, func(tx *goqu.TxDatabase) error {
		var current uint64
		if _, err := versionQuery(tx).ForUpdate(exp.Wait).ScanValContext(ctx, &current); err != nil {
			return fmt.Errorf("lock sync version: %w", err)
		}
		if change.ExpectedVersion != 0 && change.ExpectedVersion != current {
			return fmt.Errorf("expected version %d, stored %d: %w", change.ExpectedVersion, current, custom_error.ErrVersionConflict)
		}

		if err := b.apply(ctx, tx, change); err != nil {
			return err
		}

		if _, err := bumpVersionQuery(tx).Executor().ScanValContext(ctx, &version); err != nil {
			return fmt.Errorf("bump sync version: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

func (b *PostgresBackend) apply(ctx context.Context, tx *goqu.TxDatabase, change models.Change) error {
	switch change.Kind {
	case models.ChangeAddLocation:
		if change.Location == nil {
			return fmt.Errorf("%s: missing location payload", change.Kind)
		}
		if err := b.locations.PersistLocation(ctx, tx, *change.Location); err != nil {
			return err
		}
		return b.splitters.PersistSplitters(ctx, tx, change.Location.ID, change.Location.Splitters...)

	case models.ChangeUpdateLocation:
		if change.Location == nil {
			return fmt.Errorf("%s: missing location payload", change.Kind)
		}
		loc := *change.Location
		loc.ID = change.LocationID
		return b.locations.UpdateLocation(ctx, tx, loc)

	case models.ChangeDeleteLocation:
		return b.locations.RemoveLocation(ctx, tx, change.LocationID)

	case models.ChangeAddSplitter:
		if change.Splitter == nil {
			return fmt.Errorf("%s: missing splitter payload", change.Kind)
		}
		return b.splitters.PersistSplitters(ctx, tx, change.LocationID, *change.Splitter)

	case models.ChangeUpdateSplitter:
		if change.Splitter == nil {
			return fmt.Errorf("%s: missing splitter payload", change.Kind)
		}
		sp := *change.Splitter
		sp.ID = change.SplitterID
		return b.splitters.UpdateSplitter(ctx, tx, change.LocationID, sp)

	case models.ChangeDeleteSplitter:
		return b.splitters.RemoveSplitter(ctx, tx, change.LocationID, change.SplitterID)
	}

	return fmt.Errorf("unknown change kind %q", change.Kind)
}

// Watch follows the NOTIFY channel fed by the sync_state trigger.
func (b *PostgresBackend) Watch(ctx context.Context, notify func(version uint64)) error {
	return database.Listen(ctx, b.dbURL, database.ChangesChannel, b.log, notify)
}
