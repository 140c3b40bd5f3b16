package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

const routeFieldMask = "routes.duration,routes.distanceMeters,routes.polyline,routes.legs.steps,routes.legs.localizedValues,routes.legs.distanceMeters,routes.legs.duration,routes.legs.staticDuration"

type routeLeg struct {
	DistanceMeters int    `json:"distanceMeters"`
	Duration       string `json:"duration"`
	StaticDuration string `json:"staticDuration"`
	Steps          []struct {
		DistanceMeters        int    `json:"distanceMeters"`
		Duration              string `json:"duration"`
		NavigationInstruction struct {
			Instructions string `json:"instructions"`
		} `json:"navigationInstruction"`
	} `json:"steps"`
}

type routesResponse struct {
	Routes []struct {
		DistanceMeters int        `json:"distanceMeters"`
		Duration       string     `json:"duration"`
		Legs           []routeLeg `json:"legs"`
	} `json:"routes"`
}

type routeStep struct {
	StepNumber    int     `json:"step_number"`
	Instruction   string  `json:"instruction"`
	DistanceMiles float64 `json:"distance_miles"`
	Duration      string  `json:"duration"`
}

func (s *Service) computeRoute(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	origin := args.String("origin")
	destination := args.String("destination")
	travelMode := args.String("travel_mode")
	departureTime := args.String("departure_time")
	respFormat := args.String("response_format")

	body := map[string]any{
		"origin":                 map[string]string{"address": origin},
		"destination":            map[string]string{"address": destination},
		"travelMode":             travelMode,
		"computeAlternativeRoutes": false,
		"routeModifiers": map[string]bool{
			"avoidTolls":    false,
			"avoidHighways": false,
			"avoidFerries":  false,
		},
	}
	if departureTime != "" {
		body["departureTime"] = departureTime
	}

	var resp routesResponse
	err := s.routes.Do(ctx, upstream.Request{
		Method:  "POST",
		Path:    "directions/v2:computeRoutes",
		Body:    body,
		Headers: map[string]string{"X-Goog-FieldMask": routeFieldMask},
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return "", toolerr.NotFoundf("%s: no route found between %q and %q", SourceRoutes, origin, destination)
	}
	leg := resp.Routes[0].Legs[0]

	durationSeconds := parseDurationSeconds(leg.Duration)
	staticSeconds := parseDurationSeconds(leg.StaticDuration)

	steps := make([]routeStep, 0, len(leg.Steps))
	for i, st := range leg.Steps {
		instruction := st.NavigationInstruction.Instructions
		if instruction == "" {
			instruction = "Continue"
		}
		steps = append(steps, routeStep{
			StepNumber:    i + 1,
			Instruction:   instruction,
			DistanceMiles: format.Round2(format.MetersToMiles(float64(st.DistanceMeters))),
			Duration:      format.Duration(parseDurationSeconds(st.Duration)),
		})
	}

	if respFormat == format.JSONMode {
		return format.JSON(map[string]any{
			"origin":                  origin,
			"destination":             destination,
			"travel_mode":             travelMode,
			"distance_miles":          format.Round2(format.MetersToMiles(float64(leg.DistanceMeters))),
			"distance_meters":         leg.DistanceMeters,
			"duration_seconds":        durationSeconds,
			"duration_formatted":      format.Duration(durationSeconds),
			"static_duration_seconds": staticSeconds,
			"steps":                   steps,
		}), nil
	}

	var b format.Builder
	b.H1(fmt.Sprintf("Route: %s → %s", origin, destination))
	b.Linef("Travel Mode: %s", travelMode)
	b.Blank()
	b.H2("Summary")
	b.Field("Distance", fmt.Sprintf("%s (%d meters)", format.Miles(float64(leg.DistanceMeters)), leg.DistanceMeters))
	b.Field("Duration", format.Duration(durationSeconds))
	if staticSeconds > 0 && staticSeconds != durationSeconds {
		b.Field("Duration without traffic", format.Duration(staticSeconds))
		if delay := durationSeconds - staticSeconds; delay > 0 {
			b.Field("Traffic delay", "+"+format.Duration(delay))
		}
	}
	b.Blank()
	if len(steps) > 0 {
		b.H2("Route Instructions")
		for _, st := range steps {
			b.Linef("%d. %s - %.1f mi (%s)", st.StepNumber, st.Instruction, st.DistanceMiles, st.Duration)
		}
		b.Blank()
	}
	return b.String(), nil
}

// matrixElement is one line of the computeRouteMatrix response.
type matrixElement struct {
	OriginIndex      int    `json:"originIndex"`
	DestinationIndex int    `json:"destinationIndex"`
	Status           any    `json:"status"`
	Condition        string `json:"condition"`
	DistanceMeters   int    `json:"distanceMeters"`
	Duration         string `json:"duration"`
}

// decodeMatrix handles both response encodings: a JSON array and the
// streaming JSON Lines form.
func decodeMatrix(body []byte) ([]matrixElement, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var elements []matrixElement
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, err
		}
		return elements, nil
	}
	var elements []matrixElement
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var el matrixElement
		if err := json.Unmarshal(line, &el); err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// elementOK reports whether a matrix element represents a routable pair. The
// API omits the status object entirely on success and fills it on error.
func elementOK(el *matrixElement) bool {
	switch st := el.Status.(type) {
	case nil:
		return el.Condition == "" || el.Condition == "ROUTE_EXISTS"
	case string:
		return st == "OK" || st == ""
	case map[string]any:
		return len(st) == 0
	}
	return false
}

func (s *Service) computeDistanceMatrix(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	origins := args.Strings("origins")
	destinations := args.Strings("destinations")
	travelMode := args.String("travel_mode")
	respFormat := args.String("response_format")

	if len(origins)*len(destinations) > 100 {
		return "", toolerr.Validationf("too many origin-destination combinations (max 100); reduce the number of origins or destinations")
	}

	originsBody := make([]map[string]string, len(origins))
	for i, o := range origins {
		originsBody[i] = map[string]string{"address": o}
	}
	destinationsBody := make([]map[string]string, len(destinations))
	for i, d := range destinations {
		destinationsBody[i] = map[string]string{"address": d}
	}

	body, err := s.routes.DoRaw(ctx, upstream.Request{
		Method: "POST",
		Path:   "distanceMatrix/v2:computeRouteMatrix",
		Body: map[string]any{
			"origins":      originsBody,
			"destinations": destinationsBody,
			"travelMode":   travelMode,
		},
		Headers: map[string]string{"X-Goog-FieldMask": "originIndex,destinationIndex,distanceMeters,duration,status,condition"},
	})
	if err != nil {
		return "", err
	}

	elements, derr := decodeMatrix(body)
	if derr != nil {
		return "", toolerr.New(toolerr.Upstream, "%s returned an unparseable response: %v", SourceRoutes, derr)
	}

	type matrixRow struct {
		Origin            string  `json:"origin"`
		Destination       string  `json:"destination"`
		DistanceMiles     float64 `json:"distance_miles,omitempty"`
		DistanceMeters    int     `json:"distance_meters,omitempty"`
		DurationSeconds   int     `json:"duration_seconds,omitempty"`
		DurationFormatted string  `json:"duration_formatted,omitempty"`
		Status            string  `json:"status"`
		Error             string  `json:"error,omitempty"`
	}
	matrix := make([]matrixRow, 0, len(elements))
	for i := range elements {
		el := &elements[i]
		if el.OriginIndex < 0 || el.OriginIndex >= len(origins) ||
			el.DestinationIndex < 0 || el.DestinationIndex >= len(destinations) {
			continue
		}
		row := matrixRow{
			Origin:      origins[el.OriginIndex],
			Destination: destinations[el.DestinationIndex],
		}
		if elementOK(el) {
			seconds := parseDurationSeconds(el.Duration)
			row.DistanceMiles = format.Round2(format.MetersToMiles(float64(el.DistanceMeters)))
			row.DistanceMeters = el.DistanceMeters
			row.DurationSeconds = seconds
			row.DurationFormatted = format.Duration(seconds)
			row.Status = "OK"
		} else {
			row.Status = "UNAVAILABLE"
			row.Error = el.Condition
			if row.Error == "" {
				row.Error = "No route found"
			}
		}
		matrix = append(matrix, row)
	}

	var result string
	if respFormat == format.JSONMode {
		result = format.JSON(map[string]any{
			"origins":            origins,
			"destinations":       destinations,
			"travel_mode":        travelMode,
			"total_combinations": len(origins) * len(destinations),
			"matrix":             matrix,
		})
	} else {
		var b format.Builder
		b.H1("Distance Matrix")
		b.Linef("Origins: %d | Destinations: %d | Travel Mode: %s", len(origins), len(destinations), travelMode)
		b.Blank()
		b.H2("Results")
		b.Blank()
		for _, origin := range origins {
			b.H3("From: " + origin)
			for _, row := range matrix {
				if row.Origin != origin {
					continue
				}
				if row.Status == "OK" {
					b.Linef("- To **%s**: %g mi, %s", row.Destination, row.DistanceMiles, row.DurationFormatted)
				} else {
					b.Linef("- To **%s**: Route unavailable (%s)", row.Destination, row.Error)
				}
			}
			b.Blank()
		}
		result = b.String()
	}

	return format.Truncate(result, "Try reducing the number of origins or destinations."), nil
}
