package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"splitters/internal/blobstore"
	"splitters/internal/middleware"
	"splitters/internal/seed"
	"splitters/internal/store"
	"splitters/pkg/models"
	"splitters/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func useLocalStore(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_BACKEND", "local")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOCAL_STORE_PATH", filepath.Join(t.TempDir(), "splitters.json"))
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))

	return out.String()
}

func TestSeedLocationsSkipsExisting(t *testing.T) {
	backend := blobstore.New(filepath.Join(t.TempDir(), "splitters.json"), zap.NewNop())
	s := store.New(backend, zap.NewNop())
	ctx := context.Background()

	added, skipped, err := seedLocations(ctx, s, seed.Default(), true)
	require.NoError(t, err)
	assert.Equal(t, 19, added)
	assert.Equal(t, 0, skipped)

	added, skipped, err = seedLocations(ctx, s, seed.Default(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 19, skipped)
	assert.Equal(t, 52, s.Snapshot().TotalSplitters())
}

func TestSeedLocationsReplaces(t *testing.T) {
	backend := blobstore.New(filepath.Join(t.TempDir(), "splitters.json"), zap.NewNop(), blobstore.WithSeed(seed.Default))
	s := store.New(backend, zap.NewNop())

	replacement := []models.Location{{ID: "1", Name: "Renamed", Splitters: []models.Splitter{{ID: "1-1", Model: "JT C650", Port: "1/1"}}}}
	added, _, err := seedLocations(context.Background(), s, replacement, false)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	loc, ok := s.Location("1")
	require.True(t, ok)
	assert.Equal(t, "Renamed", loc.Name)
	assert.Len(t, loc.Splitters, 1)
}

func TestExportCommand(t *testing.T) {
	useLocalStore(t)

	var snapshot models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(run(t, "export")), &snapshot))

	assert.Equal(t, uint64(1), snapshot.Version)
	assert.Len(t, snapshot.Locations, 19)
}

func TestSearchCommand(t *testing.T) {
	useLocalStore(t)

	out := run(t, "search", "lenana")
	assert.Contains(t, out, "Lenana-Chaka")
	assert.Contains(t, out, "Lenana -Woodlands")
	assert.Contains(t, out, "3 locations,")
}

func TestHashPasswordCommand(t *testing.T) {
	hash := strings.TrimSpace(run(t, "hash-password", "s3cret"))

	assert.NoError(t, security.BcryptHash(hash).Authorize(context.Background(), "s3cret"))
}

type failingSync struct {
	err error
}

func (f failingSync) Run(ctx context.Context) error {
	return f.err
}

func (f failingSync) Version() uint64 {
	return 7
}

func TestRunSyncFailureKeepsServingDegraded(t *testing.T) {
	runner := failingSync{err: errors.New("watch backend: connection reset")}
	health := middleware.NewHealth(runner, "postgres", "test")

	assert.NoError(t, runSync(context.Background(), runner, health, zap.NewNop()))

	status := health.Status()
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, uint64(7), status.DataVersion)
}

func TestRunSyncCleanStopStaysHealthy(t *testing.T) {
	runner := failingSync{}
	health := middleware.NewHealth(runner, "local", "test")

	assert.NoError(t, runSync(context.Background(), runner, health, zap.NewNop()))
	assert.Equal(t, "ok", health.Status().Status)
}
