// Package format holds the shared response-shaping helpers: the markdown /
// JSON presentation modes, the fixed character budget with its truncation
// notice, and the unit conversions the mapping integrations share.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Presentation modes selectable per call via the response_format argument.
const (
	Markdown = "markdown"
	JSONMode = "json"
)

// CharacterLimit is the fixed maximum payload size for success responses.
// Error messages are never truncated.
const CharacterLimit = 25000

const metersPerMile = 1609.34

// Truncate enforces the character budget. When content exceeds it, the
// result is cut so that content plus the appended notice land exactly at the
// budget boundary; hint tells the caller how to narrow the request.
func Truncate(s, hint string) string {
	if len(s) <= CharacterLimit {
		return s
	}
	notice := fmt.Sprintf("\n\n[Response truncated - exceeded %d character limit. %s]", CharacterLimit, hint)
	return s[:CharacterLimit-len(notice)] + notice
}

// JSON renders the machine-readable presentation mode.
func JSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}

// MetersToMiles converts using the documented 1 mile = 1609.34 m factor.
func MetersToMiles(meters float64) float64 {
	return meters / metersPerMile
}

// MilesToMeters is the inverse conversion, used for radius parameters.
func MilesToMeters(miles float64) float64 {
	return miles * metersPerMile
}

// Miles formats a meter distance as miles with one decimal, e.g. "4.2 mi".
func Miles(meters float64) string {
	return fmt.Sprintf("%.1f mi", MetersToMiles(meters))
}

// Round2 rounds to two decimals for numeric payload fields.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Duration formats a second count as "1h 5m" or "5m".
func Duration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusMiles = 3959.0
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusMiles * 2 * math.Asin(math.Sqrt(a))
}

// Builder assembles markdown payloads line by line in the layout the
// integrations share.
type Builder struct {
	lines []string
}

func (b *Builder) H1(text string)  { b.lines = append(b.lines, "# "+text) }
func (b *Builder) H2(text string)  { b.lines = append(b.lines, "## "+text) }
func (b *Builder) H3(text string)  { b.lines = append(b.lines, "### "+text) }
func (b *Builder) Blank()          { b.lines = append(b.lines, "") }
func (b *Builder) Line(text string) { b.lines = append(b.lines, text) }

func (b *Builder) Linef(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

// Field emits a "- **Label**: value" line, the layout every integration's
// markdown mode uses for detail rows.
func (b *Builder) Field(label, value string) {
	b.lines = append(b.lines, fmt.Sprintf("- **%s**: %s", label, value))
}

// Bold emits a "**Label**: value" line (no list bullet).
func (b *Builder) Bold(label, value string) {
	b.lines = append(b.lines, fmt.Sprintf("**%s**: %s", label, value))
}

func (b *Builder) String() string {
	return strings.Join(b.lines, "\n")
}

// TitleCase turns an underscore place type like "gas_station" into
// "Gas Station" for section headings.
func TitleCase(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
