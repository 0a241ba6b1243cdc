package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/services"
	"github.com/ggorockee/companyfinder/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"cachectl"}, args...))
	return out.String(), err
}

func seed(t *testing.T, dir string, n int) {
	t.Helper()
	store, err := storage.OpenBadgerCompanyStore(dir)
	require.NoError(t, err)
	defer store.Close()

	rows := make([]models.Company, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.Company{
			PlaceID:        string(rune('a' + i)),
			Name:           "Company",
			Contact:        models.NotAvailable,
			Location:       "Austin",
			Website:        models.NotAvailable,
			Industry:       "bakery",
			SearchLocation: "Austin, TX",
			RadiusKm:       10,
			Rank:           i,
		})
	}
	_, err = store.InsertMany(t.Context(), rows)
	require.NoError(t, err)
}

func TestCachectlStatsDeleteClear(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, 3)
	base := []string{"--backend", "badger", "--badger-path", dir}

	out, err := run(t, append(base, "stats")...)
	require.NoError(t, err)
	var stats services.CacheStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.EqualValues(t, 3, stats.Rows)

	out, err = run(t, append(base, "delete", "a", "zz")...)
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 rows\n", out)

	out, err = run(t, append(base, "clear")...)
	require.NoError(t, err)
	assert.Equal(t, "cleared 2 rows\n", out)
}

func TestCachectlSearchServedFromCache(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir, 2)
	t.Setenv("GOOGLE_PLACES_API_KEY", "")

	out, err := run(t, "--backend", "badger", "--badger-path", dir,
		"search", "--location", "Austin, TX", "--industry", "bakery", "--radius", "5")
	require.NoError(t, err)

	var companies []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &companies))
	assert.Len(t, companies, 2)
}

func TestCachectlSearchRequiresFlags(t *testing.T) {
	_, err := run(t, "--backend", "badger", "--badger-path", t.TempDir(), "search", "--location", "Austin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "industry")
}

func TestCachectlDeleteRequiresIDs(t *testing.T) {
	_, err := run(t, "--backend", "badger", "--badger-path", t.TempDir(), "delete")
	require.Error(t, err)
}
