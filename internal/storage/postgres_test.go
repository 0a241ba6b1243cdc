package storage

import (
	"context"
	"os"
	"testing"

	"github.com/ggorockee/companyfinder/internal/config"
	"github.com/ggorockee/companyfinder/internal/database"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a disposable database: the companies table is cleared.
func openPostgresStore(t *testing.T) *PostgresCompanyStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(&config.Config{DatabaseURL: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := NewPostgresCompanyStore(db)
	_, err = store.Clear(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	store := openPostgresStore(t)
	ctx := context.Background()

	n, err := store.InsertMany(ctx, []models.Company{
		company("b", "Austin, TX", "bakery", 5, 1),
		company("a", "Austin, TX", "bakery", 5, 0),
		company("a", "Austin, TX", "bakery", 5, 0),
		company("", "Austin, TX", "bakery", 5, 2),
		company("w", "Austin, TX", "bakery", 20, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	found, err := store.FindByQuery(ctx, models.SearchQuery{Location: "Austin, TX", Industry: "bakery", RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, []string{"a", "b", "w"}, []string{found[0].PlaceID, found[1].PlaceID, found[2].PlaceID})

	wider, err := store.FindByQuery(ctx, models.SearchQuery{Location: "Austin, TX", Industry: "bakery", RadiusKm: 10})
	require.NoError(t, err)
	assert.Len(t, wider, 1)

	deleted, err := store.DeleteByPlaceIDs(ctx, []string{"a", "missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	cleared, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, cleared)

	require.NoError(t, store.Ping(ctx))
}
