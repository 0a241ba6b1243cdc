package services

import (
	"github.com/ggorockee/companyfinder/internal/config"
	"github.com/ggorockee/companyfinder/internal/storage"
	"github.com/ggorockee/companyfinder/pkg/googleplaces"
)

// Services bundles everything the HTTP server and the CLI share
type Services struct {
	Cache      *ResultCache
	Search     *SearchService
	Deletion   *DeletionService
	Industries *IndustryService
}

// New wires the search pipeline from configuration
func New(cfg *config.Config, store storage.CompanyStore) *Services {
	client := googleplaces.NewClient(cfg.GooglePlaces.APIKey,
		googleplaces.WithBaseURL(cfg.GooglePlaces.BaseURL),
		googleplaces.WithTimeout(cfg.GooglePlaces.UpstreamTimeout),
	)

	cache := NewResultCache(store, cfg.Cache.Capacity)
	search := NewSearchService(cache,
		NewGeoResolver(client),
		NewPlaceSearchPaginator(client,
			WithPageDelay(cfg.Search.PageDelay),
			WithMaxPages(cfg.Search.MaxPages),
		),
		NewPlaceDetailEnricher(client,
			WithDetailTimeout(cfg.Search.DetailTimeout),
			WithDetailConcurrency(cfg.Search.DetailConcurrency),
		),
		WithDefaultRadius(cfg.Search.DefaultRadiusKm),
		WithSearchTimeout(cfg.Search.Timeout),
	)

	return &Services{
		Cache:      cache,
		Search:     search,
		Deletion:   NewDeletionService(cache),
		Industries: NewIndustryService(cfg.IndustriesFile),
	}
}
