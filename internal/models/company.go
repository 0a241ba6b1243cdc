package models

import (
	"strconv"
	"strings"
	"time"
)

// NotAvailable stands in for any optional field the provider did not return
const NotAvailable = "N/A"

// Company is a normalized business record served to the UI and stored in the
// result cache. Rows are never updated after insert.
type Company struct {
	RowID    uint   `gorm:"primaryKey;column:row_id" json:"-"`
	PlaceID  string `gorm:"column:place_id;size:255;not null;index;uniqueIndex:idx_companies_query_place" json:"id"`
	Name     string `gorm:"size:500;not null" json:"name"`
	Contact  string `gorm:"size:100;not null" json:"contact"`
	Location string `gorm:"size:500;not null" json:"location"`
	Website  string `gorm:"size:1000;not null" json:"website"`
	Industry string `gorm:"size:255;not null;index:idx_companies_lookup;uniqueIndex:idx_companies_query_place" json:"industry"`

	// Key of the search that produced this row
	SearchLocation string    `gorm:"size:500;not null;index:idx_companies_lookup;uniqueIndex:idx_companies_query_place" json:"-"`
	RadiusKm       int       `gorm:"not null;index:idx_companies_lookup;uniqueIndex:idx_companies_query_place" json:"-"`
	Rank           int       `gorm:"column:result_rank;not null" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

// SearchQuery identifies a search and doubles as the cache key
type SearchQuery struct {
	Location string
	Industry string
	RadiusKm int
}

// CacheKey is the singleflight key for a query
func (q SearchQuery) CacheKey() string {
	return q.Location + "\x00" + q.Industry + "\x00" + strconv.Itoa(q.RadiusKm)
}

// GeoCoordinate is a resolved search center in degrees
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Industry is one entry of the bundled industries list
type Industry struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// OrNA returns s, or NotAvailable when s is blank
func OrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
