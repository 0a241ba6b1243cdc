package services

import (
	"context"
	"errors"
	"time"

	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultRadiusKm      = 10
	DefaultSearchTimeout = 60 * time.Second
)

// SearchService answers searches from the result cache and, on a miss, runs
// geocode, paginated search and detail enrichment before writing through
type SearchService struct {
	cache     *ResultCache
	geo       *GeoResolver
	paginator *PlaceSearchPaginator
	enricher  *PlaceDetailEnricher

	defaultRadius int
	timeout       time.Duration

	group singleflight.Group
	log   *zap.SugaredLogger
}

type SearchOption func(*SearchService)

func WithDefaultRadius(km int) SearchOption {
	return func(s *SearchService) {
		if km > 0 {
			s.defaultRadius = km
		}
	}
}

// WithSearchTimeout bounds the upstream pipeline run on a cache miss
func WithSearchTimeout(d time.Duration) SearchOption {
	return func(s *SearchService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewSearchService(cache *ResultCache, geo *GeoResolver, paginator *PlaceSearchPaginator, enricher *PlaceDetailEnricher, opts ...SearchOption) *SearchService {
	s := &SearchService{
		cache:         cache,
		geo:           geo,
		paginator:     paginator,
		enricher:      enricher,
		defaultRadius: DefaultRadiusKm,
		timeout:       DefaultSearchTimeout,
		log:           logger.GetLogger("services.search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize fills in the default radius for absent or non-positive values
func (s *SearchService) Normalize(query models.SearchQuery) models.SearchQuery {
	if query.RadiusKm <= 0 {
		query.RadiusKm = s.defaultRadius
	}
	return query
}

// Run returns the companies for query. Cached results are returned without
// any upstream call. The returned slice is never nil.
//
// Concurrent misses for the same query share a single upstream run. That run
// is detached from the caller's cancellation and bounded by the search
// timeout instead, so one client going away does not fail the others.
func (s *SearchService) Run(ctx context.Context, query models.SearchQuery) ([]models.Company, error) {
	query = s.Normalize(query)

	ctx, span := telemetry.StartSpan(ctx, "search.run",
		attribute.String("location", query.Location),
		attribute.String("industry", query.Industry),
		attribute.Int("radius_km", query.RadiusKm),
	)
	defer span.End()

	cached, err := s.cache.Lookup(ctx, query)
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(cached) > 0 {
		searchesTotal.WithLabelValues("cached").Inc()
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return cached, nil
	}

	ch := s.group.DoChan(query.CacheKey(), func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.fetch(runCtx, query)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var notFound *NotFoundError
			if errors.As(res.Err, &notFound) {
				searchesTotal.WithLabelValues("not_found").Inc()
			} else {
				searchesTotal.WithLabelValues("error").Inc()
			}
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
			return nil, res.Err
		}
		searchesTotal.WithLabelValues("fetched").Inc()
		// shared callers must not alias each other's slice
		records := res.Val.([]models.Company)
		if res.Shared {
			records = append([]models.Company(nil), records...)
		}
		return records, nil
	}
}

func (s *SearchService) fetch(ctx context.Context, query models.SearchQuery) ([]models.Company, error) {
	// an identical flight may have filled the cache since our lookup
	if cached, err := s.cache.Lookup(ctx, query); err != nil {
		return nil, err
	} else if len(cached) > 0 {
		return cached, nil
	}

	coord, err := s.geo.Resolve(ctx, query.Location)
	if err != nil {
		return nil, err
	}

	places, err := s.paginator.Search(ctx, coord, query.Industry, query.RadiusKm)
	if err != nil {
		return nil, err
	}

	records, err := s.enricher.Enrich(ctx, places, query.Industry)
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].SearchLocation = query.Location
		records[i].RadiusKm = query.RadiusKm
		records[i].Rank = i
	}

	if len(records) == 0 {
		s.log.Infof("No results for %q in %q (%d km)", query.Industry, query.Location, query.RadiusKm)
		return []models.Company{}, nil
	}

	res, err := s.cache.WriteThrough(ctx, records)
	if err != nil {
		s.log.Errorf("Write-through for %q in %q failed: %v", query.Industry, query.Location, err)
		return nil, err
	}
	s.log.Infof("Fetched %d companies for %q in %q (%d km), stored %d",
		len(records), query.Industry, query.Location, query.RadiusKm, res.Inserted)

	return records, nil
}
