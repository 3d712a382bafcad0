package locations

import (
	"context"
	"fmt"

	"splitters/internal/repository"
	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

// querier is satisfied by goqu.Database, goqu.TxDatabase and goqu.DialectWrapper.
type querier interface {
	From(table ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

type LocationRepository struct{}

func NewLocationRepository() *LocationRepository {
	return &LocationRepository{}
}

func (r *LocationRepository) listQuery(q querier) *goqu.SelectDataset {
	return q.From("locations").
		Select(
			"id",
			"name",
			goqu.COALESCE(goqu.C("notes"), "").As("notes"),
			goqu.COALESCE(goqu.C("team_id"), "").As("team_id"),
		).
		Order(goqu.C("seq").Asc())
}

func (r *LocationRepository) GetLocations(ctx context.Context, q querier) ([]models.Location, error) {
	var locations = []models.Location{}
	if err := r.listQuery(q).ScanStructsContext(ctx, &locations); err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}

	return locations, nil
}

func (r *LocationRepository) insertQuery(q querier, location models.Location) *goqu.InsertDataset {
	return q.Insert("locations").Rows(goqu.Record{
		"id":      location.ID,
		"name":    location.Name,
		"notes":   nullable(location.Notes),
		"team_id": nullable(location.TeamID),
	})
}

func (r *LocationRepository) PersistLocation(ctx context.Context, q querier, location models.Location) error {
	if _, err := r.insertQuery(q, location).Executor().ExecContext(ctx); err != nil {
		if isCode(err, uniqueViolation) {
			return fmt.Errorf("location %s: %w", location.ID, custom_error.ErrDuplicateLocation)
		}
		return repository.WrapPQError(err, "failed to insert location record")
	}

	return nil
}

func (r *LocationRepository) updateQuery(q querier, location models.Location) *goqu.UpdateDataset {
	return q.Update("locations").
		Set(goqu.Record{
			"name":    location.Name,
			"notes":   nullable(location.Notes),
			"team_id": nullable(location.TeamID),
		}).
		Where(goqu.Ex{"id": location.ID})
}

func (r *LocationRepository) UpdateLocation(ctx context.Context, q querier, location models.Location) error {
	result, err := r.updateQuery(q, location).Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapPQError(err, "failed to update location")
	}

	return requireRow(result, fmt.Errorf("location %s: %w", location.ID, custom_error.ErrLocationNotFound))
}

func (r *LocationRepository) RemoveLocation(ctx context.Context, q querier, locationID string) error {
	result, err := q.Delete("locations").Where(goqu.Ex{"id": locationID}).Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapPQError(err, "failed to delete location")
	}

	return requireRow(result, fmt.Errorf("location %s: %w", locationID, custom_error.ErrLocationNotFound))
}
