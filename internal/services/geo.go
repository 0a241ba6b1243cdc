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

// Geocoder is the part of the places client GeoResolver needs
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]googleplaces.GeocodeResult, error)
}

// GeoResolver turns free-text locations into coordinates
type GeoResolver struct {
	geocoder Geocoder
	log      *zap.SugaredLogger
}

func NewGeoResolver(geocoder Geocoder) *GeoResolver {
	return &GeoResolver{
		geocoder: geocoder,
		log:      logger.GetLogger("services.geo"),
	}
}

// Resolve returns the first geocoding match for location. Zero matches is a
// *NotFoundError; any provider or transport failure is an *UpstreamError.
func (r *GeoResolver) Resolve(ctx context.Context, location string) (models.GeoCoordinate, error) {
	ctx, span := telemetry.StartSpan(ctx, "places.geocode", attribute.String("location", location))
	defer span.End()

	start := time.Now()
	results, err := r.geocoder.Geocode(ctx, location)
	observeUpstream("geocode", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode failed")
		r.log.Warnf("Geocoding %q failed: %v", location, err)
		return models.GeoCoordinate{}, &UpstreamError{Op: "geocode", Err: err}
	}
	if len(results) == 0 {
		return models.GeoCoordinate{}, &NotFoundError{Location: location}
	}

	loc := results[0].Geometry.Location
	span.SetAttributes(attribute.Float64("lat", loc.Lat), attribute.Float64("lng", loc.Lng))
	return models.GeoCoordinate{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}
