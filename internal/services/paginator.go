package services

import (
	"context"
	"time"

	"github.com/ggorockee/companyfinder/internal/logger"
	"github.com/ggorockee/companyfinder/internal/models"
	"github.com/ggorockee/companyfinder/internal/telemetry"
	"github.com/ggorockee/companyfinder/pkg/googleplaces"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DefaultPageDelay is how long a continuation token needs before the
// provider accepts it
const DefaultPageDelay = 2 * time.Second

// NearbySearcher is the part of the places client the paginator needs
type NearbySearcher interface {
	NearbySearch(ctx context.Context, req googleplaces.NearbySearchRequest) (*googleplaces.NearbySearchResponse, error)
}

// PlaceSearchPaginator follows nearby-search continuation tokens and collects
// every page of results
type PlaceSearchPaginator struct {
	searcher  NearbySearcher
	pageDelay time.Duration
	maxPages  int
	log       *zap.SugaredLogger
}

type PaginatorOption func(*PlaceSearchPaginator)

// WithPageDelay sets the wait before a continuation token is used
func WithPageDelay(d time.Duration) PaginatorOption {
	return func(p *PlaceSearchPaginator) {
		if d >= 0 {
			p.pageDelay = d
		}
	}
}

// WithMaxPages caps the number of pages fetched; 0 follows tokens until the
// provider stops returning them
func WithMaxPages(n int) PaginatorOption {
	return func(p *PlaceSearchPaginator) {
		if n >= 0 {
			p.maxPages = n
		}
	}
}

func NewPlaceSearchPaginator(searcher NearbySearcher, opts ...PaginatorOption) *PlaceSearchPaginator {
	p := &PlaceSearchPaginator{
		searcher:  searcher,
		pageDelay: DefaultPageDelay,
		log:       logger.GetLogger("services.paginator"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Search fetches all result pages around coord. Pages are requested strictly
// one after another; the delay between them aborts when ctx is done.
func (p *PlaceSearchPaginator) Search(ctx context.Context, coord models.GeoCoordinate, keyword string, radiusKm int) ([]googleplaces.Place, error) {
	req := googleplaces.NearbySearchRequest{
		Location:     googleplaces.LatLng{Lat: coord.Latitude, Lng: coord.Longitude},
		RadiusMeters: radiusKm * 1000,
		Keyword:      keyword,
	}

	var places []googleplaces.Place
	seenTokens := make(map[string]struct{})
	for page := 1; ; page++ {
		resp, err := p.fetchPage(ctx, req, page)
		if err != nil {
			return nil, err
		}
		places = append(places, resp.Results...)

		token := resp.NextPageToken
		if token == "" {
			break
		}
		if p.maxPages > 0 && page >= p.maxPages {
			p.log.Debugf("Stopping after %d pages for %q", page, keyword)
			break
		}
		if _, dup := seenTokens[token]; dup {
			p.log.Warnf("Provider repeated continuation token on page %d, stopping", page)
			break
		}
		seenTokens[token] = struct{}{}

		if err := wait(ctx, p.pageDelay); err != nil {
			return nil, &UpstreamError{Op: "nearbysearch", Err: err}
		}
		req.PageToken = token
	}

	return places, nil
}

func (p *PlaceSearchPaginator) fetchPage(ctx context.Context, req googleplaces.NearbySearchRequest, page int) (*googleplaces.NearbySearchResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "places.nearbysearch",
		attribute.String("keyword", req.Keyword),
		attribute.Int("radius_m", req.RadiusMeters),
		attribute.Int("page", page),
	)
	defer span.End()

	start := time.Now()
	resp, err := p.searcher.NearbySearch(ctx, req)
	observeUpstream("nearbysearch", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "nearby search failed")
		p.log.Warnf("Nearby search page %d failed: %v", page, err)
		return nil, &UpstreamError{Op: "nearbysearch", Err: err}
	}
	span.SetAttributes(attribute.Int("results", len(resp.Results)))
	return resp, nil
}

// wait sleeps for d or until ctx is done
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
