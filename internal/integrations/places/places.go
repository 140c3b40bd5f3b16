package places

import (
	"context"
	"fmt"
	"strings"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/upstream"
)

func responseFormatField() tool.Field {
	return tool.Field{
		Type:        tool.TypeString,
		Description: "Output format: 'markdown' for human-readable or 'json' for machine-readable",
		Default:     format.Markdown,
		Enum:        []string{format.Markdown, format.JSONMode},
	}
}

// Tools returns the tool definitions for this integration.
func (s *Service) Tools() []*tool.Definition {
	return []*tool.Definition{
		{
			Name:        "google_places_nearby_search",
			Description: "Search for places near a location by type (hospitals, hotels, restaurants, etc.), with distance from the search center.",
			Source:      SourcePlaces,
			ReadOnly:    true,
			Schema: tool.Schema{
				"location": {Type: tool.TypeString, Description: "Address or location to search near, e.g. '249 Holland Drive, Savannah, GA 31419' or '32.0809,-81.0912'", Required: true, MinLen: 3, MaxLen: 500},
				"place_types": {
					Type: tool.TypeArray, Description: "Place types to search for, e.g. ['hospital', 'hotel', 'restaurant']", Required: true,
					MinItems: 1, MaxItems: 10,
					Items: &tool.Field{Type: tool.TypeString},
				},
				"radius_miles":    {Type: tool.TypeNumber, Description: "Search radius in miles", Default: 10.0, Min: tool.Num(0.1), Max: tool.Num(50.0)},
				"max_results":     {Type: tool.TypeInteger, Description: "Maximum number of results per place type", Default: 20, Min: tool.Num(1), Max: tool.Num(20)},
				"response_format": responseFormatField(),
			},
			Handler: s.nearbySearch,
		},
		{
			Name:        "google_places_text_search",
			Description: "Search for places using a text query, optionally biased toward a location.",
			Source:      SourcePlaces,
			ReadOnly:    true,
			Schema: tool.Schema{
				"query":           {Type: tool.TypeString, Description: "Search query text, e.g. 'Memorial Health University Medical Center Savannah'", Required: true, MinLen: 2, MaxLen: 500},
				"location_bias":   {Type: tool.TypeString, Description: "Optional address or coordinates to bias results toward", MaxLen: 500},
				"max_results":     {Type: tool.TypeInteger, Description: "Maximum number of results", Default: 10, Min: tool.Num(1), Max: tool.Num(20)},
				"response_format": responseFormatField(),
			},
			Handler: s.textSearch,
		},
		{
			Name:        "google_places_get_details",
			Description: "Get comprehensive details about a place by its Place ID: contact info, hours, reviews, accessibility and amenities.",
			Source:      SourcePlaces,
			ReadOnly:    true,
			Schema: tool.Schema{
				"place_id":        {Type: tool.TypeString, Description: "Google Place ID from search results", Required: true, MinLen: 10, MaxLen: 200},
				"include_reviews": {Type: tool.TypeBoolean, Description: "Include user reviews in the response", Default: true},
				"max_reviews":     {Type: tool.TypeInteger, Description: "Maximum number of reviews to include", Default: 5, Min: tool.Num(1), Max: tool.Num(20)},
				"response_format": responseFormatField(),
			},
			Handler: s.placeDetails,
		},
		{
			Name:        "google_routes_compute_route",
			Description: "Calculate the route, distance and travel time between two locations, with traffic-aware durations.",
			Source:      SourceRoutes,
			ReadOnly:    true,
			Schema: tool.Schema{
				"origin":          {Type: tool.TypeString, Description: "Starting address or coordinates", Required: true, MinLen: 3, MaxLen: 500},
				"destination":     {Type: tool.TypeString, Description: "Destination address or coordinates", Required: true, MinLen: 3, MaxLen: 500},
				"travel_mode":     {Type: tool.TypeString, Description: "Mode of transportation", Default: "DRIVE", Enum: []string{"DRIVE", "WALK", "BICYCLE", "TRANSIT", "TWO_WHEELER"}},
				"departure_time":  {Type: tool.TypeString, Description: "Optional departure time in ISO 8601 format for traffic-aware routing", MaxLen: 100},
				"response_format": responseFormatField(),
			},
			Handler: s.computeRoute,
		},
		{
			Name:        "google_routes_compute_distance_matrix",
			Description: "Calculate distances and travel times between multiple origins and destinations in a single request.",
			Source:      SourceRoutes,
			ReadOnly:    true,
			Schema: tool.Schema{
				"origins": {
					Type: tool.TypeArray, Description: "Starting addresses or coordinates", Required: true,
					MinItems: 1, MaxItems: 25,
					Items: &tool.Field{Type: tool.TypeString},
				},
				"destinations": {
					Type: tool.TypeArray, Description: "Destination addresses or coordinates", Required: true,
					MinItems: 1, MaxItems: 25,
					Items: &tool.Field{Type: tool.TypeString},
				},
				"travel_mode":     {Type: tool.TypeString, Description: "Mode of transportation", Default: "DRIVE", Enum: []string{"DRIVE", "WALK", "BICYCLE", "TRANSIT", "TWO_WHEELER"}},
				"response_format": responseFormatField(),
			},
			Handler: s.computeDistanceMatrix,
		},
		{
			Name:        "google_geocoding_geocode",
			Description: "Convert an address to geographic coordinates with formatted address details.",
			Source:      SourceGeocoding,
			ReadOnly:    true,
			Schema: tool.Schema{
				"address":         {Type: tool.TypeString, Description: "Address to geocode, e.g. '249 Holland Drive, Savannah, GA 31419'", Required: true, MinLen: 3, MaxLen: 500},
				"response_format": responseFormatField(),
			},
			Handler: s.geocode,
		},
		{
			Name:        "google_geocoding_reverse_geocode",
			Description: "Convert geographic coordinates to a human-readable address.",
			Source:      SourceGeocoding,
			ReadOnly:    true,
			Schema: tool.Schema{
				"latitude":        {Type: tool.TypeNumber, Description: "Latitude coordinate, e.g. 32.0809", Required: true, Min: tool.Num(-90), Max: tool.Num(90)},
				"longitude":       {Type: tool.TypeNumber, Description: "Longitude coordinate, e.g. -81.0912", Required: true, Min: tool.Num(-180), Max: tool.Num(180)},
				"response_format": responseFormatField(),
			},
			Handler: s.reverseGeocode,
		},
	}
}

// place mirrors the Places API (New) resource fields requested by the field
// masks below.
type place struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string   `json:"formattedAddress"`
	Rating              float64  `json:"rating"`
	UserRatingCount     int      `json:"userRatingCount"`
	Types               []string `json:"types"`
	NationalPhoneNumber string   `json:"nationalPhoneNumber"`
	WebsiteURI          string   `json:"websiteUri"`
	GoogleMapsURI       string   `json:"googleMapsUri"`
	PriceLevel          string   `json:"priceLevel"`
	Location            coords   `json:"location"`
	CurrentOpeningHours *struct {
		OpenNow             *bool    `json:"openNow"`
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"currentOpeningHours"`

	Takeout              bool `json:"takeout"`
	Delivery             bool `json:"delivery"`
	DineIn               bool `json:"dineIn"`
	ServesBreakfast      bool `json:"servesBreakfast"`
	ServesLunch          bool `json:"servesLunch"`
	ServesDinner         bool `json:"servesDinner"`
	ServesBeer           bool `json:"servesBeer"`
	ServesWine           bool `json:"servesWine"`
	ServesVegetarianFood bool `json:"servesVegetarianFood"`
	GoodForChildren      bool `json:"goodForChildren"`
	GoodForGroups        bool `json:"goodForGroups"`
	AllowsDogs           bool `json:"allowsDogs"`

	WheelchairAccessibleEntrance bool `json:"wheelchairAccessibleEntrance"`
	WheelchairAccessibleParking  bool `json:"wheelchairAccessibleParking"`
	WheelchairAccessibleRestroom bool `json:"wheelchairAccessibleRestroom"`
	WheelchairAccessibleSeating  bool `json:"wheelchairAccessibleSeating"`

	ParkingOptions *struct {
		FreeParkingLot    bool `json:"freeParkingLot"`
		PaidParkingLot    bool `json:"paidParkingLot"`
		PaidStreetParking bool `json:"paidStreetParking"`
		ValetParking      bool `json:"valetParking"`
	} `json:"parkingOptions"`
	PaymentOptions *struct {
		AcceptsCreditCards bool `json:"acceptsCreditCards"`
		AcceptsDebitCards  bool `json:"acceptsDebitCards"`
		AcceptsCashOnly    bool `json:"acceptsCashOnly"`
		AcceptsNFC         bool `json:"acceptsNfc"`
	} `json:"paymentOptions"`

	Reviews []review `json:"reviews"`
}

type review struct {
	Rating            float64 `json:"rating"`
	AuthorAttribution struct {
		DisplayName string `json:"displayName"`
	} `json:"authorAttribution"`
	Text struct {
		Text string `json:"text"`
	} `json:"text"`
	RelativePublishTimeDescription string `json:"relativePublishTimeDescription"`
}

type placesResponse struct {
	Places []place `json:"places"`
}

const nearbyFieldMask = "places.displayName,places.formattedAddress,places.rating,places.userRatingCount,places.location,places.id,places.nationalPhoneNumber,places.currentOpeningHours"

type nearbyResult struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float64 `json:"rating,omitempty"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	DistanceMiles    float64 `json:"distance_miles"`
	PlaceID          string  `json:"place_id"`
	Phone            string  `json:"phone,omitempty"`
	OpenNow          *bool   `json:"open_now"`
}

func (s *Service) nearbySearch(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	location := args.String("location")
	placeTypes := args.Strings("place_types")
	radiusMiles := args.Float("radius_miles")
	maxResults := args.Int("max_results")
	respFormat := args.String("response_format")

	center, err := s.resolveLocation(ctx, location)
	if err != nil {
		return "", err
	}
	radiusMeters := format.MilesToMeters(radiusMiles)

	resultsByType := make(map[string][]nearbyResult, len(placeTypes))
	total := 0
	for _, placeType := range placeTypes {
		body := map[string]any{
			"includedTypes":  []string{placeType},
			"maxResultCount": maxResults,
			"locationRestriction": map[string]any{
				"circle": map[string]any{
					"center": center,
					"radius": radiusMeters,
				},
			},
		}
		var resp placesResponse
		err := s.places.Do(ctx, upstream.Request{
			Method:  "POST",
			Path:    "places:searchNearby",
			Body:    body,
			Headers: map[string]string{"X-Goog-FieldMask": nearbyFieldMask},
		}, &resp)
		if err != nil {
			return "", err
		}

		results := make([]nearbyResult, 0, len(resp.Places))
		for _, p := range resp.Places {
			r := nearbyResult{
				Name:             p.DisplayName.Text,
				Address:          p.FormattedAddress,
				Rating:           p.Rating,
				UserRatingsTotal: p.UserRatingCount,
				DistanceMiles: format.Round2(format.Haversine(
					center.Latitude, center.Longitude, p.Location.Latitude, p.Location.Longitude)),
				PlaceID: strings.TrimPrefix(p.ID, "places/"),
				Phone:   p.NationalPhoneNumber,
			}
			if p.CurrentOpeningHours != nil {
				r.OpenNow = p.CurrentOpeningHours.OpenNow
			}
			results = append(results, r)
			total++
		}
		resultsByType[placeType] = results
	}

	var result string
	if respFormat == format.JSONMode {
		result = format.JSON(map[string]any{
			"search_location":    location,
			"search_coordinates": center,
			"radius_miles":       radiusMiles,
			"results_by_type":    resultsByType,
			"total_results":      total,
		})
	} else {
		var b format.Builder
		b.H1("Nearby Places: " + location)
		b.Linef("Search radius: %g miles", radiusMiles)
		b.Linef("Total results: %d", total)
		b.Blank()

		for _, placeType := range placeTypes {
			results := resultsByType[placeType]
			if len(results) == 0 {
				b.H2(fmt.Sprintf("%s (0 results)", format.TitleCase(placeType)))
				b.Line("No places found of this type.")
				b.Blank()
				continue
			}
			b.H2(fmt.Sprintf("%s (%d results)", format.TitleCase(placeType), len(results)))
			b.Blank()
			for _, r := range results {
				b.H3(fmt.Sprintf("%s %s", r.Name, starRating(r.Rating)))
				b.Field("Address", r.Address)
				b.Field("Distance", fmt.Sprintf("%g miles", r.DistanceMiles))
				if r.Phone != "" {
					b.Field("Phone", r.Phone)
				}
				if r.OpenNow != nil {
					status := "Closed"
					if *r.OpenNow {
						status = "Open now"
					}
					b.Field("Status", status)
				}
				if r.UserRatingsTotal > 0 {
					b.Field("Reviews", fmt.Sprintf("%d ratings", r.UserRatingsTotal))
				}
				b.Field("Place ID", r.PlaceID)
				b.Blank()
			}
		}
		result = b.String()
	}

	return format.Truncate(result, "Try reducing radius_miles or max_results."), nil
}

const textSearchFieldMask = "places.displayName,places.formattedAddress,places.rating,places.userRatingCount,places.id,places.types,places.nationalPhoneNumber,places.websiteUri,places.location"

func (s *Service) textSearch(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	query := args.String("query")
	locationBias := args.String("location_bias")
	maxResults := args.Int("max_results")
	respFormat := args.String("response_format")

	body := map[string]any{
		"textQuery":      query,
		"maxResultCount": maxResults,
	}
	if locationBias != "" {
		if center, err := s.resolveLocation(ctx, locationBias); err == nil {
			body["locationBias"] = map[string]any{
				"circle": map[string]any{
					"center": center,
					"radius": 50000,
				},
			}
		}
	}

	var resp placesResponse
	err := s.places.Do(ctx, upstream.Request{
		Method:  "POST",
		Path:    "places:searchText",
		Body:    body,
		Headers: map[string]string{"X-Goog-FieldMask": textSearchFieldMask},
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Places) == 0 {
		return fmt.Sprintf("No results found for query: %q", query), nil
	}

	type textResult struct {
		Name             string   `json:"name"`
		Address          string   `json:"address"`
		Rating           float64  `json:"rating,omitempty"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		PlaceID          string   `json:"place_id"`
		Types            []string `json:"types"`
		Phone            string   `json:"phone,omitempty"`
		Website          string   `json:"website,omitempty"`
		Coordinates      coords   `json:"coordinates"`
	}
	results := make([]textResult, 0, len(resp.Places))
	for _, p := range resp.Places {
		results = append(results, textResult{
			Name:             p.DisplayName.Text,
			Address:          p.FormattedAddress,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingCount,
			PlaceID:          strings.TrimPrefix(p.ID, "places/"),
			Types:            p.Types,
			Phone:            p.NationalPhoneNumber,
			Website:          p.WebsiteURI,
			Coordinates:      p.Location,
		})
	}

	var result string
	if respFormat == format.JSONMode {
		result = format.JSON(map[string]any{
			"query":         query,
			"results":       results,
			"total_results": len(results),
		})
	} else {
		var b format.Builder
		b.H1(fmt.Sprintf("Search Results: %q", query))
		b.Linef("Found %d results", len(results))
		b.Blank()
		for _, r := range results {
			b.H2(fmt.Sprintf("%s %s", r.Name, starRating(r.Rating)))
			b.Field("Address", r.Address)
			if len(r.Types) > 0 {
				b.Field("Type", format.TitleCase(r.Types[0]))
			}
			if r.Phone != "" {
				b.Field("Phone", r.Phone)
			}
			if r.Website != "" {
				b.Field("Website", r.Website)
			}
			if r.UserRatingsTotal > 0 {
				b.Field("Reviews", fmt.Sprintf("%d ratings", r.UserRatingsTotal))
			}
			if r.Coordinates.Latitude != 0 {
				b.Field("Coordinates", fmt.Sprintf("%g, %g", r.Coordinates.Latitude, r.Coordinates.Longitude))
			}
			b.Field("Place ID", r.PlaceID)
			b.Blank()
		}
		result = b.String()
	}

	return format.Truncate(result, "Try reducing max_results."), nil
}
