package locations

import (
	"context"
	"regexp"
	"testing"

	"splitters/internal/repository"
	custom_error "splitters/pkg/errors"
	"splitters/pkg/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	lockVersionSQL = regexp.QuoteMeta(`SELECT "version" FROM "sync_state" WHERE ("id" = 1) LIMIT 1 FOR UPDATE`)
	bumpVersionSQL = regexp.QuoteMeta(`UPDATE "sync_state" SET "version"=version + 1`)
)

func newMockBackend(t *testing.T) (*PostgresBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresBackend(repository.NewRepository(db), "", zap.NewNop()), mock
}

func addLocationChange(expected uint64) models.Change {
	return models.Change{
		Kind:       models.ChangeAddLocation,
		LocationID: "9",
		Location: &models.Location{
			ID:        "9",
			Name:      "Lavington",
			Splitters: []models.Splitter{{ID: "9-1", Model: "ADHS C650", Port: "1/1"}},
		},
		ExpectedVersion: expected,
	}
}

func TestApplyBumpsVersion(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVersionSQL).WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "locations"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "splitters"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(bumpVersionSQL).WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(6))
	mock.ExpectCommit()

	version, err := backend.Apply(context.Background(), addLocationChange(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(6), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyVersionConflictLeavesVersion(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVersionSQL).WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectRollback()

	version, err := backend.Apply(context.Background(), addLocationChange(3))
	assert.ErrorIs(t, err, custom_error.ErrVersionConflict)
	assert.Zero(t, version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyFailedInsertRollsBack(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVersionSQL).WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "locations"`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "splitters"`)).WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	version, err := backend.Apply(context.Background(), addLocationChange(0))
	assert.ErrorIs(t, err, custom_error.ErrDuplicateSplitter)
	assert.Zero(t, version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyDeleteMissingLocation(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectBegin()
	mock.ExpectQuery(lockVersionSQL).WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "locations" WHERE ("id" = '42')`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := backend.Apply(context.Background(), models.Change{Kind: models.ChangeDeleteLocation, LocationID: "42"})
	assert.ErrorIs(t, err, custom_error.ErrLocationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadGroupsSplitters(t *testing.T) {
	backend, mock := newMockBackend(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "version" FROM "sync_state"`)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "locations" ORDER BY "seq" ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "notes", "team_id"}).
			AddRow("1", "Westlands", "", "").
			AddRow("2", "Kilimani", "Gate code 4411", "t1").
			AddRow("3", "Runda", "", ""))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "splitters" ORDER BY "location_id" ASC, "seq" ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "location_id", "model", "port", "notes"}).
			AddRow("1-1", "1", "ADHS C650", "7/9", "").
			AddRow("1-2", "1", "JT C650", "3/14", "Black tape").
			AddRow("2-1", "2", "KAREN 650", "1/1", ""))
	mock.ExpectCommit()

	snapshot, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), snapshot.Version)
	require.Len(t, snapshot.Locations, 3)

	assert.Equal(t, []string{"1", "2", "3"}, []string{snapshot.Locations[0].ID, snapshot.Locations[1].ID, snapshot.Locations[2].ID})
	require.Len(t, snapshot.Locations[0].Splitters, 2)
	assert.Equal(t, "1-1", snapshot.Locations[0].Splitters[0].ID)
	assert.Equal(t, "Black tape", snapshot.Locations[0].Splitters[1].Notes)
	assert.Equal(t, "t1", snapshot.Locations[1].TeamID)
	assert.Len(t, snapshot.Locations[1].Splitters, 1)
	assert.NotNil(t, snapshot.Locations[2].Splitters)
	assert.Empty(t, snapshot.Locations[2].Splitters)
	assert.NoError(t, mock.ExpectationsWereMet())
}
