// Package places adapts the Google Places API (New), the Routes API and the
// Geocoding API. Places and Routes take the key in the X-Goog-Api-Key
// header; Geocoding keeps the legacy query-string key.
package places

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

const (
	SourcePlaces    = "Google Places API"
	SourceRoutes    = "Google Routes API"
	SourceGeocoding = "Google Geocoding API"
)

const (
	placesBaseURL    = "https://places.googleapis.com/v1"
	routesBaseURL    = "https://routes.googleapis.com"
	geocodingBaseURL = "https://maps.googleapis.com/maps/api/geocode"
)

// matrixTimeout gives route-matrix calls more room than the default.
const matrixTimeout = 60 * time.Second

// Service bundles the three upstream clients behind one tool surface.
type Service struct {
	apiKey    string
	places    *upstream.Client
	routes    *upstream.Client
	geocoding *upstream.Client
}

// NewService builds the service. An empty key turns every call into a
// Configuration error; the process itself still starts.
func NewService(apiKey string, httpClient *http.Client) *Service {
	routesHTTP := httpClient
	if routesHTTP == nil {
		routesHTTP = &http.Client{Timeout: matrixTimeout}
	}

	s := &Service{
		apiKey:    apiKey,
		places:    upstream.New(placesBaseURL, SourcePlaces, httpClient),
		routes:    upstream.New(routesBaseURL, SourceRoutes, routesHTTP),
		geocoding: upstream.New(geocodingBaseURL, SourceGeocoding, httpClient),
	}
	s.places.Authorize = upstream.HeaderKey("X-Goog-Api-Key", apiKey)
	s.routes.Authorize = upstream.HeaderKey("X-Goog-Api-Key", apiKey)
	s.geocoding.Authorize = upstream.QueryKey("key", apiKey)
	return s
}

// SetBaseURLs points all three clients at a test server.
func (s *Service) SetBaseURLs(placesURL, routesURL, geocodingURL string) {
	s.places.BaseURL = placesURL
	s.routes.BaseURL = routesURL
	s.geocoding.BaseURL = geocodingURL
}

func (s *Service) checkKey() error {
	if s.apiKey == "" {
		return toolerr.Configurationf("Google Maps API key is not configured; set GOOGLE_MAPS_API_KEY")
	}
	return nil
}

type coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type geocodeResult struct {
	FormattedAddress  string `json:"formatted_address"`
	PlaceID           string `json:"place_id"`
	AddressComponents []struct {
		LongName  string   `json:"long_name"`
		ShortName string   `json:"short_name"`
		Types     []string `json:"types"`
	} `json:"address_components"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

// resolveLocation turns a location string into coordinates. Strings that
// already look like "lat,lng" skip the geocoding round-trip.
func (s *Service) resolveLocation(ctx context.Context, location string) (*coords, error) {
	if c, ok := parseLatLng(location); ok {
		return c, nil
	}

	q := url.Values{}
	q.Set("address", location)

	var resp geocodeResponse
	if err := s.geocoding.GetJSON(ctx, "json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return nil, toolerr.NotFoundf("%s: could not geocode location %q", SourceGeocoding, location)
	}
	loc := resp.Results[0].Geometry.Location
	return &coords{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

func parseLatLng(location string) (*coords, bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return nil, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, false
	}
	return &coords{Latitude: lat, Longitude: lng}, true
}

// parseDurationSeconds reads the Routes API duration encoding, e.g. "1234s".
func parseDurationSeconds(d string) int {
	n, err := strconv.Atoi(strings.TrimSuffix(d, "s"))
	if err != nil {
		return 0
	}
	return n
}

func starRating(rating float64) string {
	if rating == 0 {
		return "No rating"
	}
	return fmt.Sprintf("⭐ %g", rating)
}
