// Package maps adapts the legacy Google Maps web services: Distance Matrix,
// Directions, Places Nearby, Place Details and Geocoding. The API key rides
// in the query string on every request.
package maps

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

// Per-endpoint source names, used in results and error messages.
const (
	SourceDistanceMatrix = "Google Maps Distance Matrix API"
	SourceDirections     = "Google Maps Directions API"
	SourcePlaces         = "Google Maps Places API"
	SourceGeocoding      = "Google Maps Geocoding API"
)

const defaultBaseURL = "https://maps.googleapis.com"

// maxRadiusMeters is the Places Nearby API ceiling (50 km).
const maxRadiusMeters = 50000

// Service issues legacy Maps calls with a shared key and client.
type Service struct {
	apiKey string
	client *upstream.Client
}

// NewService builds the service. The key may be empty; each call then fails
// with a Configuration error instead of the process refusing to start.
func NewService(apiKey string, httpClient *http.Client) *Service {
	c := upstream.New(defaultBaseURL, "Google Maps", httpClient)
	return &Service{apiKey: apiKey, client: c}
}

// SetBaseURL points the service at a different endpoint, used by tests.
func (s *Service) SetBaseURL(u string) { s.client.BaseURL = u }

func (s *Service) checkKey() error {
	if s.apiKey == "" {
		return toolerr.Configurationf("Google Maps API key is not configured; set GOOGLE_MAPS_API_KEY")
	}
	return nil
}

func (s *Service) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("key", s.apiKey)
	return s.client.GetJSON(ctx, path, q, out)
}

// Tools returns the tool definitions for this integration.
func (s *Service) Tools() []*tool.Definition {
	return []*tool.Definition{
		{
			Name:        "get_distance",
			Description: "Calculate the distance between two locations.",
			Source:      SourceDistanceMatrix,
			ReadOnly:    true,
			Schema: tool.Schema{
				"origin":      {Type: tool.TypeString, Description: "Starting location (address or place name)", Required: true, MinLen: 1},
				"destination": {Type: tool.TypeString, Description: "Ending location (address or place name)", Required: true, MinLen: 1},
				"mode":        {Type: tool.TypeString, Description: "Travel mode", Default: "driving", Enum: []string{"driving", "walking", "bicycling", "transit"}},
			},
			Handler: s.getDistance,
		},
		{
			Name:        "get_drive_time",
			Description: "Calculate drive time between two locations, with traffic when a departure time is given.",
			Source:      SourceDirections,
			ReadOnly:    true,
			Schema: tool.Schema{
				"origin":      {Type: tool.TypeString, Description: "Starting location (address or place name)", Required: true, MinLen: 1},
				"destination": {Type: tool.TypeString, Description: "Ending location (address or place name)", Required: true, MinLen: 1},
				"time_of_day": {Type: tool.TypeString, Description: "Departure time: 'now' or 'YYYY-MM-DD HH:MM'"},
			},
			Handler: s.getDriveTime,
		},
		{
			Name:        "search_nearby",
			Description: "Find nearby places of a specific type around a location, sorted by driving distance.",
			Source:      SourcePlaces,
			ReadOnly:    true,
			Schema: tool.Schema{
				"location":     {Type: tool.TypeString, Description: "Center point for the search (address or place name)", Required: true, MinLen: 1},
				"place_type":   {Type: tool.TypeString, Description: "Type of place, e.g. hospital, pharmacy, restaurant", Default: "hospital"},
				"radius_miles": {Type: tool.TypeNumber, Description: "Search radius in miles", Default: 10.0, Min: tool.Num(0.1), Max: tool.Num(31.07)},
				"limit":        {Type: tool.TypeInteger, Description: "Maximum number of results", Default: 10, Min: tool.Num(1), Max: tool.Num(20)},
			},
			Handler: s.searchNearby,
		},
		{
			Name:        "get_place_details",
			Description: "Get detailed information about a place: rating, reviews, opening hours, phone, website.",
			Source:      SourcePlaces,
			ReadOnly:    true,
			Schema: tool.Schema{
				"place_id": {Type: tool.TypeString, Description: "Google Places ID for the location", Required: true, MinLen: 1},
			},
			Handler: s.getPlaceDetails,
		},
		{
			Name:        "validate_address",
			Description: "Validate and standardize an address, returning coordinates and address components.",
			Source:      SourceGeocoding,
			ReadOnly:    true,
			Schema: tool.Schema{
				"address": {Type: tool.TypeString, Description: "Address to validate", Required: true, MinLen: 1},
			},
			Handler: s.validateAddress,
		},
	}
}

type textValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

type matrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string    `json:"status"`
			Distance textValue `json:"distance"`
			Duration textValue `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (s *Service) distanceMatrix(ctx context.Context, origins, destinations []string, mode string) (*matrixResponse, error) {
	q := url.Values{}
	q.Set("origins", strings.Join(origins, "|"))
	q.Set("destinations", strings.Join(destinations, "|"))
	q.Set("mode", mode)
	q.Set("units", "imperial")

	var resp matrixResponse
	if err := s.get(ctx, "maps/api/distancematrix/json", q, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, toolerr.New(toolerr.Upstream, "%s returned status %s", SourceDistanceMatrix, resp.Status)
	}
	return &resp, nil
}

func (s *Service) getDistance(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	origin := args.String("origin")
	destination := args.String("destination")
	mode := args.String("mode")

	resp, err := s.distanceMatrix(ctx, []string{origin}, []string{destination}, mode)
	if err != nil {
		return "", err
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return "", toolerr.New(toolerr.Upstream, SourceDistanceMatrix+" returned an empty matrix")
	}
	el := resp.Rows[0].Elements[0]
	if el.Status != "OK" {
		return "", toolerr.New(toolerr.Upstream, "%s: unable to calculate distance (%s)", SourceDistanceMatrix, el.Status)
	}

	return format.JSON(map[string]any{
		"origin":             origin,
		"destination":        destination,
		"mode":               mode,
		"distance_miles":     format.Round2(format.MetersToMiles(float64(el.Distance.Value))),
		"distance_meters":    el.Distance.Value,
		"distance_formatted": el.Distance.Text,
	}), nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		Legs []struct {
			Distance          textValue  `json:"distance"`
			Duration          textValue  `json:"duration"`
			DurationInTraffic *textValue `json:"duration_in_traffic"`
		} `json:"legs"`
	} `json:"routes"`
}

func (s *Service) getDriveTime(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	origin := args.String("origin")
	destination := args.String("destination")
	timeOfDay := args.String("time_of_day")

	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("mode", "driving")

	if timeOfDay != "" {
		if strings.EqualFold(timeOfDay, "now") {
			q.Set("departure_time", "now")
		} else {
			t, err := time.ParseInLocation("2006-01-02 15:04", timeOfDay, time.Local)
			if err != nil {
				return "", toolerr.Validationf("invalid time_of_day format, use 'YYYY-MM-DD HH:MM' or 'now'")
			}
			q.Set("departure_time", strconv.FormatInt(t.Unix(), 10))
		}
	}

	var resp directionsResponse
	if err := s.get(ctx, "maps/api/directions/json", q, &resp); err != nil {
		return "", err
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return "", toolerr.NotFoundf("%s: no route found between %s and %s", SourceDirections, origin, destination)
	}
	leg := resp.Routes[0].Legs[0]

	payload := map[string]any{
		"origin":             origin,
		"destination":        destination,
		"duration_minutes":   format.Round1(float64(leg.Duration.Value) / 60),
		"duration_formatted": leg.Duration.Text,
		"distance_miles":     format.Round2(format.MetersToMiles(float64(leg.Distance.Value))),
		"distance_formatted": leg.Distance.Text,
	}
	if leg.DurationInTraffic != nil {
		trafficMinutes := float64(leg.DurationInTraffic.Value) / 60
		payload["duration_with_traffic_minutes"] = format.Round1(trafficMinutes)
		payload["traffic_delay_minutes"] = format.Round1(trafficMinutes - float64(leg.Duration.Value)/60)
	}
	return format.JSON(payload), nil
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress  string `json:"formatted_address"`
		PlaceID           string `json:"place_id"`
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Geometry struct {
			Location     latLng `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
	} `json:"results"`
}

func (s *Service) geocode(ctx context.Context, address string) (*geocodeResponse, error) {
	q := url.Values{}
	q.Set("address", address)

	var resp geocodeResponse
	if err := s.get(ctx, "maps/api/geocode/json", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string   `json:"name"`
		Vicinity         string   `json:"vicinity"`
		PlaceID          string   `json:"place_id"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location latLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type nearbyPlace struct {
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	PlaceID          string   `json:"place_id"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types"`
	// Pointers so a place at the search center (a true 0.0) is kept
	// distinct from a place the matrix returned no element for.
	DistanceMiles    *float64 `json:"distance_miles,omitempty"`
	DriveTimeMinutes *float64 `json:"drive_time_minutes,omitempty"`
}

func (s *Service) searchNearby(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	location := args.String("location")
	placeType := args.String("place_type")
	radiusMiles := args.Float("radius_miles")
	limit := args.Int("limit")

	geo, err := s.geocode(ctx, location)
	if err != nil {
		return "", err
	}
	if len(geo.Results) == 0 {
		return "", toolerr.NotFoundf("%s: could not geocode location: %s", SourceGeocoding, location)
	}
	center := geo.Results[0].Geometry.Location

	radiusMeters := format.MilesToMeters(radiusMiles)
	if radiusMeters > maxRadiusMeters {
		radiusMeters = maxRadiusMeters
		radiusMiles = 31.07
	}

	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	q.Set("radius", strconv.Itoa(int(radiusMeters)))
	q.Set("type", placeType)

	var resp nearbyResponse
	if err := s.get(ctx, "maps/api/place/nearbysearch/json", q, &resp); err != nil {
		return "", err
	}

	raw := resp.Results
	if len(raw) > limit {
		raw = raw[:limit]
	}

	places := make([]nearbyPlace, 0, len(raw))
	for _, p := range raw {
		places = append(places, nearbyPlace{
			Name:             p.Name,
			Address:          p.Vicinity,
			PlaceID:          p.PlaceID,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			Types:            p.Types,
		})
	}

	// One matrix call covers every found place; per-place elements line up
	// with the destinations order.
	if len(raw) > 0 {
		destinations := make([]string, len(raw))
		for i, p := range raw {
			destinations[i] = fmt.Sprintf("%f,%f", p.Geometry.Location.Lat, p.Geometry.Location.Lng)
		}
		origin := fmt.Sprintf("%f,%f", center.Lat, center.Lng)
		matrix, err := s.distanceMatrix(ctx, []string{origin}, destinations, "driving")
		if err != nil {
			return "", err
		}
		if len(matrix.Rows) > 0 {
			for i, el := range matrix.Rows[0].Elements {
				if i >= len(places) || el.Status != "OK" {
					continue
				}
				miles := format.Round2(format.MetersToMiles(float64(el.Distance.Value)))
				minutes := format.Round1(float64(el.Duration.Value) / 60)
				places[i].DistanceMiles = &miles
				places[i].DriveTimeMinutes = &minutes
			}
		}
	}

	sortByDistance(places)

	return format.JSON(map[string]any{
		"search_center": location,
		"place_type":    placeType,
		"radius_miles":  radiusMiles,
		"total_found":   len(places),
		"places":        places,
	}), nil
}

// sortByDistance orders places nearest first; places without a computed
// distance sink to the end.
func sortByDistance(places []nearbyPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		di, dj := places[i].DistanceMiles, places[j].DistanceMiles
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return *di < *dj
	})
}

type placeDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name                 string   `json:"name"`
		FormattedAddress     string   `json:"formatted_address"`
		FormattedPhoneNumber string   `json:"formatted_phone_number"`
		Website              string   `json:"website"`
		Rating               float64  `json:"rating"`
		UserRatingsTotal     int      `json:"user_ratings_total"`
		PriceLevel           int      `json:"price_level"`
		Types                []string `json:"types"`
		OpeningHours         *struct {
			OpenNow     bool     `json:"open_now"`
			WeekdayText []string `json:"weekday_text"`
		} `json:"opening_hours"`
		Reviews []struct {
			AuthorName              string  `json:"author_name"`
			Rating                  float64 `json:"rating"`
			Text                    string  `json:"text"`
			RelativeTimeDescription string  `json:"relative_time_description"`
		} `json:"reviews"`
	} `json:"result"`
}

func (s *Service) getPlaceDetails(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	placeID := args.String("place_id")

	q := url.Values{}
	q.Set("place_id", placeID)

	var resp placeDetailsResponse
	if err := s.get(ctx, "maps/api/place/details/json", q, &resp); err != nil {
		return "", err
	}
	if resp.Status == "NOT_FOUND" || resp.Status == "INVALID_REQUEST" {
		return "", toolerr.NotFoundf("%s: no place found for id %s", SourcePlaces, placeID)
	}
	if resp.Status != "OK" {
		return "", toolerr.New(toolerr.Upstream, "%s: unable to get place details (%s)", SourcePlaces, resp.Status)
	}
	place := resp.Result

	payload := map[string]any{
		"name":               place.Name,
		"address":            place.FormattedAddress,
		"phone":              place.FormattedPhoneNumber,
		"website":            place.Website,
		"rating":             place.Rating,
		"user_ratings_total": place.UserRatingsTotal,
		"price_level":        place.PriceLevel,
		"types":              place.Types,
		"place_id":           placeID,
	}
	if place.OpeningHours != nil {
		payload["opening_hours"] = map[string]any{
			"open_now":     place.OpeningHours.OpenNow,
			"weekday_text": place.OpeningHours.WeekdayText,
		}
	}
	if len(place.Reviews) > 0 {
		reviews := place.Reviews
		if len(reviews) > 5 {
			reviews = reviews[:5]
		}
		out := make([]map[string]any, 0, len(reviews))
		for _, r := range reviews {
			out = append(out, map[string]any{
				"author": r.AuthorName,
				"rating": r.Rating,
				"text":   r.Text,
				"time":   r.RelativeTimeDescription,
			})
		}
		payload["reviews"] = out
	}
	return format.JSON(payload), nil
}

func (s *Service) validateAddress(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	address := args.String("address")

	resp, err := s.geocode(ctx, address)
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", toolerr.NotFoundf("%s: could not validate address: %s", SourceGeocoding, address)
	}
	loc := resp.Results[0]

	components := map[string]string{}
	stateCode := ""
	for _, c := range loc.AddressComponents {
		for _, t := range c.Types {
			components[t] = c.LongName
			if t == "administrative_area_level_1" {
				stateCode = c.ShortName
			}
		}
	}

	return format.JSON(map[string]any{
		"input_address":     address,
		"formatted_address": loc.FormattedAddress,
		"latitude":          loc.Geometry.Location.Lat,
		"longitude":         loc.Geometry.Location.Lng,
		"place_id":          loc.PlaceID,
		"location_type":     loc.Geometry.LocationType,
		"address_components": map[string]any{
			"street_number": components["street_number"],
			"street":        components["route"],
			"city":          components["locality"],
			"county":        components["administrative_area_level_2"],
			"state":         components["administrative_area_level_1"],
			"state_code":    stateCode,
			"zip_code":      components["postal_code"],
			"country":       components["country"],
		},
	}), nil
}
