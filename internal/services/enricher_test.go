package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/pkg/googleplaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnricherBuildsRecords(t *testing.T) {
	fetcher := &fakeDetails{details: map[string]googleplaces.PlaceDetails{
		"a": detail("a", "Sugar Mama's", "(512) 555-0100", "1905 S 1st St, Austin", "https://sugarmamas.example"),
		"b": detail("b", "Quack's", "", "411 E 43rd St, Austin", ""),
	}}
	e := NewPlaceDetailEnricher(fetcher)

	records, err := e.Enrich(context.Background(), []googleplaces.Place{place("a", "A"), place("b", "B")}, "bakery")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, models.Company{
		PlaceID:  "a",
		Name:     "Sugar Mama's",
		Contact:  "(512) 555-0100",
		Location: "1905 S 1st St, Austin",
		Website:  "https://sugarmamas.example",
		Industry: "bakery",
	}, records[0])

	assert.Equal(t, "b", records[1].PlaceID)
	assert.Equal(t, models.NotAvailable, records[1].Contact)
	assert.Equal(t, models.NotAvailable, records[1].Website)
	assert.Equal(t, "411 E 43rd St, Austin", records[1].Location)
}

func TestEnricherDegradesFailedLookup(t *testing.T) {
	fetcher := &fakeDetails{
		details: map[string]googleplaces.PlaceDetails{
			"a": detail("a", "A", "111", "addr a", "https://a.example"),
			"b": detail("b", "B", "222", "addr b", "https://b.example"),
			"c": detail("c", "C", "333", "addr c", "https://c.example"),
		},
		failing: map[string]bool{"b": true},
	}
	e := NewPlaceDetailEnricher(fetcher)

	records, err := e.Enrich(context.Background(), []googleplaces.Place{place("a", "A"), place("b", "B"), place("c", "C")}, "bakery")
	require.NoError(t, err)
	require.Len(t, records, 3)

	failed := records[1]
	assert.Equal(t, "b", failed.PlaceID)
	assert.Equal(t, models.NotAvailable, failed.Contact)
	assert.Equal(t, models.NotAvailable, failed.Website)
	assert.Equal(t, "B", failed.Name)
	assert.Equal(t, "B street", failed.Location)

	assert.Equal(t, "111", records[0].Contact)
	assert.Equal(t, "333", records[2].Contact)
}

func TestEnricherSkipsMissingAndRepeatedIDs(t *testing.T) {
	fetcher := &fakeDetails{details: map[string]googleplaces.PlaceDetails{
		"a": detail("a", "A", "", "", ""),
	}}
	e := NewPlaceDetailEnricher(fetcher)

	records, err := e.Enrich(context.Background(), []googleplaces.Place{place("a", "A"), place("", "ghost"), place("a", "A again")}, "bakery")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 1, fetcher.total())
}

func TestEnricherPerLookupTimeout(t *testing.T) {
	fetcher := &fakeDetails{block: true}
	e := NewPlaceDetailEnricher(fetcher, WithDetailTimeout(10*time.Millisecond))

	start := time.Now()
	records, err := e.Enrich(context.Background(), []googleplaces.Place{place("a", "A"), place("b", "B")}, "bakery")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Less(t, time.Since(start), 5*time.Second)
	for _, r := range records {
		assert.Equal(t, models.NotAvailable, r.Contact)
		assert.Equal(t, models.NotAvailable, r.Website)
	}
}

func TestEnricherParentCancellation(t *testing.T) {
	fetcher := &fakeDetails{block: true}
	e := NewPlaceDetailEnricher(fetcher, WithDetailTimeout(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := e.Enrich(ctx, []googleplaces.Place{place("a", "A")}, "bakery")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type countingDetails struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingDetails) PlaceDetails(ctx context.Context, placeID string, fields []string) (*googleplaces.PlaceDetails, error) {
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		old := c.peak.Load()
		if n <= old || c.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return &googleplaces.PlaceDetails{PlaceID: placeID, Name: placeID}, nil
}

func TestEnricherConcurrencyLimit(t *testing.T) {
	fetcher := &countingDetails{}
	e := NewPlaceDetailEnricher(fetcher, WithDetailConcurrency(2))

	places := make([]googleplaces.Place, 0, 10)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		places = append(places, place(id, id))
	}

	records, err := e.Enrich(context.Background(), places, "bakery")
	require.NoError(t, err)
	assert.Len(t, records, 10)
	assert.LessOrEqual(t, fetcher.peak.Load(), int32(2))
}
