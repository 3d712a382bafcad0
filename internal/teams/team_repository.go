package teams

import (
	"context"
	"fmt"

	"splitters/internal/repository"
	"splitters/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type TeamRepository struct {
	Repository *repository.Repository
}

func NewRepository(r *repository.Repository) *TeamRepository {
	return &TeamRepository{Repository: r}
}

func listQuery(q interface {
	From(table ...interface{}) *goqu.SelectDataset
}) *goqu.SelectDataset {
	return q.From("teams").Select("id", "name", "region").Order(goqu.C("name").Asc())
}

func (r *TeamRepository) GetTeams(ctx context.Context) ([]models.Team, error) {
	var teams = []models.Team{}
	if err := listQuery(r.Repository.GoquDBWrapper).ScanStructsContext(ctx, &teams); err != nil {
		return nil, fmt.Errorf("unable to execute SQL: %w", err)
	}

	return teams, nil
}

func (r *TeamRepository) PersistTeam(ctx context.Context, team models.Team) error {
	_, err := r.Repository.GoquDBWrapper.Insert("teams").
		Rows(goqu.Record{"id": team.ID, "name": team.Name, "region": team.Region}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{"name": team.Name, "region": team.Region})).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapPQError(err, "failed to upsert team")
	}

	return nil
}

// NoTeams lists nothing. It serves deployments running on the local blob backend.
type NoTeams struct{}

func (NoTeams) GetTeams(context.Context) ([]models.Team, error) {
	return []models.Team{}, nil
}
