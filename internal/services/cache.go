package services

import (
	"context"

	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/storage"
	"github.com/ggorockee/companyfinder/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultCacheCapacity is the row count above which the cache is wiped
const DefaultCacheCapacity = 1000

// ResultCache serves stored result sets by query and keeps the store under
// its row cap by clearing it wholesale
type ResultCache struct {
	store    storage.CompanyStore
	capacity int
	log      *zap.SugaredLogger
}

// WriteResult describes the effect of a write-through
type WriteResult struct {
	Inserted int
	Evicted  bool
	// Rows held after the write, 0 when Evicted
	Rows int64
}

// CacheStats is a point-in-time view of the store
type CacheStats struct {
	Rows     int64 `json:"rows"`
	Capacity int   `json:"capacity"`
}

func NewResultCache(store storage.CompanyStore, capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &ResultCache{
		store:    store,
		capacity: capacity,
		log:      logger.GetLogger("services.cache"),
	}
}

// Lookup returns records stored for the same location and industry with a
// radius at least as wide as the query's. A place stored under several radii
// is returned once.
func (c *ResultCache) Lookup(ctx context.Context, query models.SearchQuery) ([]models.Company, error) {
	ctx, span := telemetry.StartSpan(ctx, "cache.lookup",
		attribute.String("location", query.Location),
		attribute.String("industry", query.Industry),
		attribute.Int("radius_km", query.RadiusKm),
	)
	defer span.End()

	rows, err := c.store.FindByQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, &StoreError{Op: "lookup", Err: err}
	}

	seen := make(map[string]struct{}, len(rows))
	out := make([]models.Company, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.PlaceID]; ok {
			continue
		}
		seen[row.PlaceID] = struct{}{}
		out = append(out, row)
	}

	if len(out) > 0 {
		cacheLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}
	span.SetAttributes(attribute.Int("rows", len(out)))
	return out, nil
}

// WriteThrough inserts records as one unordered batch. Duplicates and
// malformed rows are skipped. When the store then holds more than the
// capacity it is cleared entirely.
func (c *ResultCache) WriteThrough(ctx context.Context, records []models.Company) (WriteResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "cache.write_through", attribute.Int("records", len(records)))
	defer span.End()

	var res WriteResult
	inserted, err := c.store.InsertMany(ctx, records)
	if err != nil {
		span.RecordError(err)
		return res, &StoreError{Op: "insert", Err: err}
	}
	res.Inserted = inserted

	count, err := c.store.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return res, &StoreError{Op: "count", Err: err}
	}
	res.Rows = count

	if count > int64(c.capacity) {
		cleared, err := c.store.Clear(ctx)
		if err != nil {
			span.RecordError(err)
			return res, &StoreError{Op: "clear", Err: err}
		}
		cacheEvictionsTotal.Inc()
		cacheEvictedRowsTotal.Add(float64(cleared))
		c.log.Warnf("Result cache held %d rows (capacity %d), cleared %d", count, c.capacity, cleared)
		res.Evicted = true
		res.Rows = 0
	}

	span.SetAttributes(attribute.Int("inserted", res.Inserted), attribute.Bool("evicted", res.Evicted))
	return res, nil
}

// Delete removes every stored record whose id is in ids. Unknown ids are
// ignored.
func (c *ResultCache) Delete(ctx context.Context, ids []string) (int64, error) {
	deleted, err := c.store.DeleteByPlaceIDs(ctx, ids)
	if err != nil {
		return 0, &StoreError{Op: "delete", Err: err}
	}
	return deleted, nil
}

func (c *ResultCache) Stats(ctx context.Context) (CacheStats, error) {
	count, err := c.store.Count(ctx)
	if err != nil {
		return CacheStats{}, &StoreError{Op: "count", Err: err}
	}
	return CacheStats{Rows: count, Capacity: c.capacity}, nil
}

func (c *ResultCache) Clear(ctx context.Context) (int64, error) {
	cleared, err := c.store.Clear(ctx)
	if err != nil {
		return 0, &StoreError{Op: "clear", Err: err}
	}
	c.log.Infof("Result cache cleared, %d rows removed", cleared)
	return cleared, nil
}

// Ping checks the backing store is reachable
func (c *ResultCache) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return &StoreError{Op: "ping", Err: err}
	}
	return nil
}
