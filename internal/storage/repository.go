package storage

import (
	"context"

	"github.com/ggorockee/companyfinder/internal/models"
)

// CompanyStore persists cached search results.
//
// FindByQuery returns rows whose search location and industry equal the
// query's and whose stored radius is at least the requested one, ordered by
// stored radius then rank. InsertMany is unordered: rows that are duplicates of
// an already stored (query, place) pair or are otherwise malformed are skipped
// and the rest persist; it returns the number of rows written.
type CompanyStore interface {
	FindByQuery(ctx context.Context, query models.SearchQuery) ([]models.Company, error)
	InsertMany(ctx context.Context, records []models.Company) (int, error)
	Count(ctx context.Context) (int64, error)
	DeleteByPlaceIDs(ctx context.Context, placeIDs []string) (int64, error)
	Clear(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
