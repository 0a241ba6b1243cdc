package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *BadgerCompanyStore {
	t.Helper()
	store, err := OpenBadgerCompanyStore(InMemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func company(placeID, location, industry string, radius, rank int) models.Company {
	return models.Company{
		PlaceID:        placeID,
		Name:           "Company " + placeID,
		Contact:        models.NotAvailable,
		Location:       "1 Main St",
		Website:        models.NotAvailable,
		Industry:       industry,
		SearchLocation: location,
		RadiusKm:       radius,
		Rank:           rank,
	}
}

func TestBadgerInsertAndFind(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	n, err := store.InsertMany(ctx, []models.Company{
		company("b", "Austin, TX", "bakery", 5, 1),
		company("a", "Austin, TX", "bakery", 5, 0),
		company("z", "Austin, TX", "florist", 5, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	found, err := store.FindByQuery(ctx, models.SearchQuery{Location: "Austin, TX", Industry: "bakery", RadiusKm: 5})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].PlaceID)
	assert.Equal(t, "b", found[1].PlaceID)
	assert.Equal(t, 5, found[0].RadiusKm)
	assert.Equal(t, "Austin, TX", found[0].SearchLocation)
}

func TestBadgerRadiusContainment(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.InsertMany(ctx, []models.Company{company("wide", "Austin", "bakery", 20, 0)})
	require.NoError(t, err)

	narrower, err := store.FindByQuery(ctx, models.SearchQuery{Location: "Austin", Industry: "bakery", RadiusKm: 10})
	require.NoError(t, err)
	assert.Len(t, narrower, 1)

	wider, err := store.FindByQuery(ctx, models.SearchQuery{Location: "Austin", Industry: "bakery", RadiusKm: 30})
	require.NoError(t, err)
	assert.Empty(t, wider)
}

func TestBadgerSkipsDuplicatesAndMalformed(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	first := company("a", "Austin", "bakery", 5, 0)
	_, err := store.InsertMany(ctx, []models.Company{first})
	require.NoError(t, err)

	n, err := store.InsertMany(ctx, []models.Company{
		first,
		company("", "Austin", "bakery", 5, 1),
		company("b", "Austin", "bakery", 5, 2),
		company("b", "Austin", "bakery", 5, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestBadgerDeleteByPlaceIDs(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.InsertMany(ctx, []models.Company{
		company("a", "Austin", "bakery", 5, 0),
		company("a", "Austin", "bakery", 10, 0),
		company("b", "Austin", "bakery", 5, 1),
	})
	require.NoError(t, err)

	deleted, err := store.DeleteByPlaceIDs(ctx, []string{"a", "missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	deleted, err = store.DeleteByPlaceIDs(ctx, []string{"a", "missing"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// the index entry is gone too, so the pair can be stored again
	n, err := store.InsertMany(ctx, []models.Company{company("a", "Austin", "bakery", 5, 0)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBadgerClear(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	batch := make([]models.Company, 0, 25)
	for i := 0; i < 25; i++ {
		batch = append(batch, company(fmt.Sprintf("p%d", i), "Austin", "bakery", 5, i))
	}
	_, err := store.InsertMany(ctx, batch)
	require.NoError(t, err)

	cleared, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 25, cleared)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, store.Ping(ctx))
}

func TestBadgerOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := OpenBadgerCompanyStore(dir)
	require.NoError(t, err)
	_, err = store.InsertMany(ctx, []models.Company{company("a", "Austin", "bakery", 5, 0)})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerCompanyStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
