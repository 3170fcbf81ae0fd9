package queries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/pkg/database"
	"github.com/OldStager01/parksense/pkg/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{Driver: database.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db).Run(context.Background()))
	return db
}

var base = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

func history(states ...bool) []models.Observation {
	obs := make([]models.Observation, len(states))
	for i, occupied := range states {
		obs[i] = models.Observation{Timestamp: base.Add(time.Duration(i) * time.Minute), Occupied: occupied}
	}
	return obs
}

func TestObservationRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewObservationRepository(newTestDB(t))

	n, err := repo.InsertBatch(ctx, "A01", models.SourcePoll, history(false, true, true, false))
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	// same instants again are ignored
	n, err = repo.InsertBatch(ctx, "A01", models.SourcePoll, history(false, true))
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	got, err := repo.GetBySpot(ctx, "A01", base.Add(-time.Hour), base.Add(time.Hour), 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.True(t, got[0].Timestamp.Equal(base))
	assert.False(t, got[0].Occupied)
	assert.True(t, got[1].Occupied)

	latest, err := repo.GetBySpot(ctx, "A01", base.Add(-time.Hour), base.Add(time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[0].Timestamp.Equal(base.Add(2*time.Minute)))
	assert.True(t, latest[1].Timestamp.Equal(base.Add(3*time.Minute)))
}

func TestObservationRepository_LoadSinceAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewObservationRepository(newTestDB(t))

	_, err := repo.InsertBatch(ctx, "A01", models.SourcePoll, history(true, false))
	require.NoError(t, err)
	_, err = repo.InsertBatch(ctx, "A02", models.SourceMQTT, history(false, false, true))
	require.NoError(t, err)

	all, err := repo.LoadSince(ctx, base)
	require.NoError(t, err)
	assert.Len(t, all["A01"], 2)
	assert.Len(t, all["A02"], 3)

	spots, err := repo.ListSpots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A01", "A02"}, spots)

	pruned, err := repo.DeleteBefore(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 2, pruned)

	deleted, err := repo.DeleteBySpot(ctx, "A02")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	count, err := repo.CountBySpot(ctx, "A01")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStatusChangeRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusChangeRepository(newTestDB(t))

	for i, to := range []models.SpotStatus{models.SpotStatusOccupied, models.SpotStatusFree} {
		_, err := repo.Create(ctx, models.StatusChange{
			SpotID:    "A01",
			From:      models.SpotStatusInactive,
			To:        to,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := repo.GetBySpot(ctx, "A01", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.SpotStatusFree, records[0].To)
	assert.Equal(t, models.SpotStatusOccupied, records[1].To)
}

func TestOperatorRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewOperatorRepository(newTestDB(t))

	_, err := repo.GetByUsername(ctx, "ops")
	assert.ErrorIs(t, err, ErrOperatorNotFound)

	created, err := repo.Create(ctx, "ops", "$2a$10$hash")
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	op, err := repo.GetByUsername(ctx, "ops")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", op.PasswordHash)
}
