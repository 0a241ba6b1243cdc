package googleplaces

// Provider status values shared by every endpoint
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// LatLng is a coordinate pair as returned in geometry blocks
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Geometry struct {
	Location LatLng `json:"location"`
}

// GeocodeResult is a single geocoding match
type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Geometry `json:"geometry"`
	PlaceID          string   `json:"place_id"`
	Types            []string `json:"types"`
}

type GeocodeResponse struct {
	Results      []GeocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// Place is a nearby-search hit. Only PlaceID is guaranteed.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name,omitempty"`
	Vicinity         string   `json:"vicinity,omitempty"`
	FormattedAddress string   `json:"formatted_address,omitempty"`
	BusinessStatus   string   `json:"business_status,omitempty"`
	Types            []string `json:"types,omitempty"`
	Geometry         Geometry `json:"geometry"`
}

// NearbySearchRequest describes one nearby-search page
type NearbySearchRequest struct {
	Location     LatLng
	RadiusMeters int
	Keyword      string
	PageToken    string
}

type NearbySearchResponse struct {
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token,omitempty"`
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message,omitempty"`
}

// PlaceDetails is the subset of the details payload selected by the field mask
type PlaceDetails struct {
	PlaceID                  string `json:"place_id"`
	Name                     string `json:"name"`
	FormattedPhoneNumber     string `json:"formatted_phone_number,omitempty"`
	InternationalPhoneNumber string `json:"international_phone_number,omitempty"`
	FormattedAddress         string `json:"formatted_address,omitempty"`
	Website                  string `json:"website,omitempty"`
}

type PlaceDetailsResponse struct {
	Result       PlaceDetails `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// DefaultDetailFields is the field mask requested for every detail lookup
var DefaultDetailFields = []string{"name", "formatted_phone_number", "website", "formatted_address", "place_id"}

type statusCarrier interface {
	providerStatus() (status, message string)
}

func (r *GeocodeResponse) providerStatus() (string, string)      { return r.Status, r.ErrorMessage }
func (r *NearbySearchResponse) providerStatus() (string, string) { return r.Status, r.ErrorMessage }
func (r *PlaceDetailsResponse) providerStatus() (string, string) { return r.Status, r.ErrorMessage }
