package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ggorockee/companyfinder/pkg/googleplaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoResolverResolve(t *testing.T) {
	resolver := NewGeoResolver(geocodeAt(30.27, -97.74))

	coord, err := resolver.Resolve(context.Background(), "Austin, TX")
	require.NoError(t, err)
	assert.InDelta(t, 30.27, coord.Latitude, 1e-9)
	assert.InDelta(t, -97.74, coord.Longitude, 1e-9)
}

func TestGeoResolverNotFound(t *testing.T) {
	resolver := NewGeoResolver(&fakeGeocoder{})

	_, err := resolver.Resolve(context.Background(), "nowhere at all")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "nowhere at all", notFound.Location)
}

func TestGeoResolverUpstreamFailure(t *testing.T) {
	apiErr := &googleplaces.APIError{Endpoint: "geocode", Status: "OVER_QUERY_LIMIT"}
	resolver := NewGeoResolver(&fakeGeocoder{err: apiErr})

	_, err := resolver.Resolve(context.Background(), "Austin, TX")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "geocode", upstream.Op)
	assert.True(t, errors.Is(err, apiErr))

	var notFound *NotFoundError
	assert.False(t, errors.As(err, &notFound))
}
