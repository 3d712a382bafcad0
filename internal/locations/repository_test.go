package locations

import (
	"testing"

	"splitters/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dialect = goqu.Dialect("postgres")

func TestLocationQueries(t *testing.T) {
	repo := NewLocationRepository()

	sql, _, err := repo.listQuery(dialect).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "name", COALESCE("notes", '') AS "notes", COALESCE("team_id", '') AS "team_id" FROM "locations" ORDER BY "seq" ASC`, sql)

	sql, _, err = repo.updateQuery(dialect, models.Location{ID: "7", Name: "Lavington"}).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "locations" SET "name"='Lavington',"notes"=NULL,"team_id"=NULL WHERE ("id" = '7')`, sql)
}

func TestSplitterQueries(t *testing.T) {
	repo := NewSplitterRepository()

	sql, _, err := repo.insertQuery(dialect, "2",
		models.Splitter{ID: "2-1", Model: "ADHS C650", Port: "1/1"},
		models.Splitter{ID: "2-2", Model: "JT C650", Port: "3/14", Notes: "Black tape"},
	).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "splitters" ("id", "location_id", "model", "notes", "port") VALUES ('2-1', '2', 'ADHS C650', NULL, '1/1'), ('2-2', '2', 'JT C650', 'Black tape', '3/14')`, sql)

	sql, _, err = repo.listQuery(dialect).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `ORDER BY "location_id" ASC, "seq" ASC`)
}

func TestSyncVersionQueries(t *testing.T) {
	sql, _, err := versionQuery(dialect).ForUpdate(exp.Wait).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, `SELECT "version" FROM "sync_state" WHERE ("id" = 1) FOR UPDATE`)

	sql, _, err = bumpVersionQuery(dialect).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "sync_state" SET "version"=version + 1 WHERE ("id" = 1) RETURNING "version"`, sql)
}
