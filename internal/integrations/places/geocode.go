package places

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
)

func (s *Service) geocode(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	address := args.String("address")
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("address", address)

	var resp geocodeResponse
	if err := s.geocoding.GetJSON(ctx, "json", q, &resp); err != nil {
		return "", err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return "", toolerr.NotFoundf("%s: could not geocode address %q (status %s)", SourceGeocoding, address, resp.Status)
	}
	result := resp.Results[0]
	loc := result.Geometry.Location

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"input_address":     address,
			"formatted_address": result.FormattedAddress,
			"coordinates": map[string]float64{
				"latitude":  loc.Lat,
				"longitude": loc.Lng,
			},
			"address_components": result.AddressComponents,
			"location_type":      result.Geometry.LocationType,
			"place_id":           result.PlaceID,
		}), nil
	}

	var b format.Builder
	b.H1("Geocoding Result")
	b.Blank()
	b.H2("Address")
	b.Bold("Input", address)
	b.Bold("Formatted", result.FormattedAddress)
	b.Blank()
	b.H2("Coordinates")
	b.Field("Latitude", fmt.Sprintf("%g", loc.Lat))
	b.Field("Longitude", fmt.Sprintf("%g", loc.Lng))
	b.Blank()
	if len(result.AddressComponents) > 0 {
		b.H2("Location Details")
		for _, c := range result.AddressComponents {
			b.Linef("- **%s** (%s)", c.LongName, strings.Join(c.Types, ", "))
		}
		b.Blank()
	}
	b.Bold("Location Type", result.Geometry.LocationType)
	b.Bold("Place ID", result.PlaceID)
	return b.String(), nil
}

func (s *Service) reverseGeocode(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	latitude := args.Float("latitude")
	longitude := args.Float("longitude")
	respFormat := args.String("response_format")

	q := url.Values{}
	q.Set("latlng", fmt.Sprintf("%g,%g", latitude, longitude))

	var resp geocodeResponse
	if err := s.geocoding.GetJSON(ctx, "json", q, &resp); err != nil {
		return "", err
	}
	if resp.Status != "OK" || len(resp.Results) == 0 {
		return "", toolerr.NotFoundf("%s: could not reverse geocode coordinates (%g, %g) (status %s)",
			SourceGeocoding, latitude, longitude, resp.Status)
	}
	result := resp.Results[0]

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"coordinates": map[string]float64{
				"latitude":  latitude,
				"longitude": longitude,
			},
			"formatted_address":  result.FormattedAddress,
			"address_components": result.AddressComponents,
			"place_id":           result.PlaceID,
		}), nil
	}

	var b format.Builder
	b.H1("Reverse Geocoding Result")
	b.Blank()
	b.H2("Coordinates")
	b.Linef("Latitude: %g, Longitude: %g", latitude, longitude)
	b.Blank()
	b.H2("Address")
	b.Line(result.FormattedAddress)
	b.Blank()
	if len(result.AddressComponents) > 0 {
		b.H2("Location Details")
		for _, c := range result.AddressComponents {
			b.Linef("- **%s** (%s)", c.LongName, strings.Join(c.Types, ", "))
		}
		b.Blank()
	}
	b.Bold("Place ID", result.PlaceID)
	return b.String(), nil
}
