package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/storage"
	"github.com/ggorockee/companyfinder/pkg/googleplaces"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	results []googleplaces.GeocodeResult
	err     error
	calls   atomic.Int32
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) ([]googleplaces.GeocodeResult, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func geocodeAt(lat, lng float64) *fakeGeocoder {
	return &fakeGeocoder{results: []googleplaces.GeocodeResult{
		{Geometry: googleplaces.Geometry{Location: googleplaces.LatLng{Lat: lat, Lng: lng}}},
	}}
}

// fakeSearcher serves pages keyed by the page token ("" is the first page)
type fakeSearcher struct {
	mu       sync.Mutex
	pages    map[string]*googleplaces.NearbySearchResponse
	err      error
	requests []googleplaces.NearbySearchRequest
}

func (f *fakeSearcher) NearbySearch(ctx context.Context, req googleplaces.NearbySearchRequest) (*googleplaces.NearbySearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[req.PageToken]
	if !ok {
		return nil, &googleplaces.APIError{Endpoint: "nearbysearch", Status: "INVALID_REQUEST"}
	}
	return page, nil
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func singlePage(places ...googleplaces.Place) *fakeSearcher {
	return &fakeSearcher{pages: map[string]*googleplaces.NearbySearchResponse{
		"": {Results: places, Status: googleplaces.StatusOK},
	}}
}

type fakeDetails struct {
	mu      sync.Mutex
	details map[string]googleplaces.PlaceDetails
	failing map[string]bool
	calls   map[string]int
	// block makes every lookup wait for ctx to end
	block bool
}

func (f *fakeDetails) PlaceDetails(ctx context.Context, placeID string, fields []string) (*googleplaces.PlaceDetails, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[placeID]++
	d, ok := f.details[placeID]
	fail := f.failing[placeID]
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if fail || !ok {
		return nil, errors.New("details unavailable")
	}
	return &d, nil
}

func (f *fakeDetails) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func place(id, name string) googleplaces.Place {
	return googleplaces.Place{PlaceID: id, Name: name, Vicinity: name + " street"}
}

func detail(id, name, phone, address, website string) googleplaces.PlaceDetails {
	return googleplaces.PlaceDetails{
		PlaceID:              id,
		Name:                 name,
		FormattedPhoneNumber: phone,
		FormattedAddress:     address,
		Website:              website,
	}
}

func newTestStore(t *testing.T) *storage.BadgerCompanyStore {
	t.Helper()
	store, err := storage.OpenBadgerCompanyStore(storage.InMemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// failingStore wraps a real store and fails the selected operations
type failingStore struct {
	storage.CompanyStore
	failFind   bool
	failInsert bool
}

var errStoreDown = errors.New("store down")

func (s *failingStore) FindByQuery(ctx context.Context, q models.SearchQuery) ([]models.Company, error) {
	if s.failFind {
		return nil, errStoreDown
	}
	return s.CompanyStore.FindByQuery(ctx, q)
}

func (s *failingStore) InsertMany(ctx context.Context, records []models.Company) (int, error) {
	if s.failInsert {
		return 0, errStoreDown
	}
	return s.CompanyStore.InsertMany(ctx, records)
}
