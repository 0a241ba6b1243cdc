package services

import (
	"context"
	"strings"
	"time"

	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/telemetry"
	"github.com/ggorockee/companyfinder/pkg/googleplaces"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultDetailTimeout = 10 * time.Second

// DetailsFetcher is the part of the places client the enricher needs
type DetailsFetcher interface {
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*googleplaces.PlaceDetails, error)
}

// PlaceDetailEnricher turns raw places into company records by looking up
// each place's details concurrently
type PlaceDetailEnricher struct {
	fetcher     DetailsFetcher
	fields      []string
	timeout     time.Duration
	concurrency int
	log         *zap.SugaredLogger
}

type EnricherOption func(*PlaceDetailEnricher)

// WithDetailTimeout bounds every single detail lookup
func WithDetailTimeout(d time.Duration) EnricherOption {
	return func(e *PlaceDetailEnricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithDetailConcurrency caps in-flight lookups; 0 means one goroutine per place
func WithDetailConcurrency(n int) EnricherOption {
	return func(e *PlaceDetailEnricher) {
		if n >= 0 {
			e.concurrency = n
		}
	}
}

func NewPlaceDetailEnricher(fetcher DetailsFetcher, opts ...EnricherOption) *PlaceDetailEnricher {
	e := &PlaceDetailEnricher{
		fetcher: fetcher,
		fields:  googleplaces.DefaultDetailFields,
		timeout: DefaultDetailTimeout,
		log:     logger.GetLogger("services.enricher"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns one record per distinct place, in input order. A failed
// lookup yields a record with N/A contact and website instead of an error.
// The only error is ctx ending before every lookup finished.
func (e *PlaceDetailEnricher) Enrich(ctx context.Context, places []googleplaces.Place, industry string) ([]models.Company, error) {
	places = distinctPlaces(places)

	ctx, span := telemetry.StartSpan(ctx, "places.enrich", attribute.Int("places", len(places)))
	defer span.End()

	records := make([]models.Company, len(places))

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, place := range places {
		g.Go(func() error {
			records[i] = e.enrichOne(ctx, place, industry)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrichment interrupted")
		return nil, &UpstreamError{Op: "details", Err: err}
	}
	return records, nil
}

func (e *PlaceDetailEnricher) enrichOne(ctx context.Context, place googleplaces.Place, industry string) models.Company {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	details, err := e.fetcher.PlaceDetails(ctx, place.PlaceID, e.fields)
	observeUpstream("details", start, err)
	if err != nil {
		degradedDetailsTotal.Inc()
		e.log.Warnf("Details for %s failed, using N/A record: %v", place.PlaceID, err)
		return degradedRecord(place, industry)
	}

	return models.Company{
		PlaceID:  place.PlaceID,
		Name:     models.OrNA(firstNonEmpty(details.Name, place.Name)),
		Contact:  models.OrNA(firstNonEmpty(details.FormattedPhoneNumber, details.InternationalPhoneNumber)),
		Location: models.OrNA(firstNonEmpty(details.FormattedAddress, place.FormattedAddress, place.Vicinity)),
		Website:  models.OrNA(details.Website),
		Industry: industry,
	}
}

// degradedRecord keeps what the search page already told us about the place
func degradedRecord(place googleplaces.Place, industry string) models.Company {
	return models.Company{
		PlaceID:  place.PlaceID,
		Name:     models.OrNA(place.Name),
		Contact:  models.NotAvailable,
		Location: models.OrNA(firstNonEmpty(place.FormattedAddress, place.Vicinity)),
		Website:  models.NotAvailable,
		Industry: industry,
	}
}

// distinctPlaces drops places without an id and repeats across pages
func distinctPlaces(places []googleplaces.Place) []googleplaces.Place {
	seen := make(map[string]struct{}, len(places))
	out := make([]googleplaces.Place, 0, len(places))
	for _, p := range places {
		if p.PlaceID == "" {
			continue
		}
		if _, ok := seen[p.PlaceID]; ok {
			continue
		}
		seen[p.PlaceID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
