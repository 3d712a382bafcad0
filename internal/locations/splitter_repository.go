package locations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"splitters/internal/repository"
	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type SplitterRepository struct{}

func NewSplitterRepository() *SplitterRepository {
	return &SplitterRepository{}
}

func (r *SplitterRepository) listQuery(q querier) *goqu.SelectDataset {
	return q.From("splitters").
		Select(
			"id",
			"location_id",
			"model",
			"port",
			goqu.COALESCE(goqu.C("notes"), "").As("notes"),
		).
		Order(goqu.C("location_id").Asc(), goqu.C("seq").Asc())
}

// GetSplitters returns every splitter grouped by location id, in insertion order.
func (r *SplitterRepository) GetSplitters(ctx context.Context, q querier) (map[string][]models.Splitter, error) {
	var splitters []models.Splitter
	if err := r.listQuery(q).ScanStructsContext(ctx, &splitters); err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}

	byLocation := make(map[string][]models.Splitter)
	for _, s := range splitters {
		byLocation[s.LocationID] = append(byLocation[s.LocationID], s)
	}

	return byLocation, nil
}

func (r *SplitterRepository) insertQuery(q querier, locationID string, splitters ...models.Splitter) *goqu.InsertDataset {
	rows := make([]interface{}, 0, len(splitters))
	for _, s := range splitters {
		rows = append(rows, goqu.Record{
			"location_id": locationID,
			"id":          s.ID,
			"model":       s.Model,
			"port":        s.Port,
			"notes":       nullable(s.Notes),
		})
	}

	return q.Insert("splitters").Rows(rows...)
}

func (r *SplitterRepository) PersistSplitters(ctx context.Context, q querier, locationID string, splitters ...models.Splitter) error {
	if len(splitters) == 0 {
		return nil
	}

	if _, err := r.insertQuery(q, locationID, splitters...).Executor().ExecContext(ctx); err != nil {
		switch {
		case isCode(err, uniqueViolation):
			return fmt.Errorf("location %s: %w", locationID, custom_error.ErrDuplicateSplitter)
		case isCode(err, foreignKeyViolation):
			return fmt.Errorf("location %s: %w", locationID, custom_error.ErrLocationNotFound)
		}
		return repository.WrapPQError(err, "failed to insert splitter record")
	}

	return nil
}

func (r *SplitterRepository) updateQuery(q querier, locationID string, splitter models.Splitter) *goqu.UpdateDataset {
	return q.Update("splitters").
		Set(goqu.Record{
			"model": splitter.Model,
			"port":  splitter.Port,
			"notes": nullable(splitter.Notes),
		}).
		Where(goqu.Ex{"location_id": locationID, "id": splitter.ID})
}

func (r *SplitterRepository) UpdateSplitter(ctx context.Context, q querier, locationID string, splitter models.Splitter) error {
	result, err := r.updateQuery(q, locationID, splitter).Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapPQError(err, "failed to update splitter")
	}

	return requireRow(result, fmt.Errorf("splitter %s: %w", splitter.ID, custom_error.ErrSplitterNotFound))
}

func (r *SplitterRepository) RemoveSplitter(ctx context.Context, q querier, locationID, splitterID string) error {
	result, err := q.Delete("splitters").
		Where(goqu.Ex{"location_id": locationID, "id": splitterID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapPQError(err, "failed to delete splitter")
	}

	return requireRow(result, fmt.Errorf("splitter %s: %w", splitterID, custom_error.ErrSplitterNotFound))
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}

func isCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

func requireRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not retrieve rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
