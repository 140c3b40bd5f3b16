package format

import (
	"strings"
	"testing"
)

func TestTruncateUnderLimitUnchanged(t *testing.T) {
	s := strings.Repeat("a", CharacterLimit)
	if got := Truncate(s, "hint"); got != s {
		t.Error("content at the limit should pass through unchanged")
	}
}

func TestTruncateLandsExactlyOnLimit(t *testing.T) {
	s := strings.Repeat("a", CharacterLimit+500)
	got := Truncate(s, "Try reducing max_results.")
	if len(got) != CharacterLimit {
		t.Fatalf("len = %d, want exactly %d", len(got), CharacterLimit)
	}
	if !strings.HasSuffix(got, "Try reducing max_results.]") {
		t.Errorf("notice missing, tail = %q", got[len(got)-60:])
	}
	if !strings.Contains(got, "[Response truncated - exceeded 25000 character limit.") {
		t.Error("truncation notice not found")
	}
}

func TestMilesFormatting(t *testing.T) {
	if got := Miles(6809); got != "4.2 mi" {
		t.Errorf("Miles(6809) = %q, want %q", got, "4.2 mi")
	}
	if got := Miles(1609.34); got != "1.0 mi" {
		t.Errorf("Miles(1609.34) = %q, want %q", got, "1.0 mi")
	}
}

func TestMetersMilesRoundTrip(t *testing.T) {
	meters := MilesToMeters(5)
	if meters < 8046.69 || meters > 8046.71 {
		t.Errorf("MilesToMeters(5) = %v, want about 8046.7", meters)
	}
	if got := MetersToMiles(meters); got < 4.999 || got > 5.001 {
		t.Errorf("round trip = %v, want 5", got)
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		seconds int
		want    string
	}{
		{0, "0m"},
		{59, "0m"},
		{300, "5m"},
		{3900, "1h 5m"},
		{7200, "2h 0m"},
	}
	for _, tc := range cases {
		if got := Duration(tc.seconds); got != tc.want {
			t.Errorf("Duration(%d) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestHaversine(t *testing.T) {
	// Same point is zero distance.
	if d := Haversine(40.7128, -74.0060, 40.7128, -74.0060); d != 0 {
		t.Errorf("same point distance = %v, want 0", d)
	}
	// New York to Los Angeles is roughly 2450 miles.
	d := Haversine(40.7128, -74.0060, 34.0522, -118.2437)
	if d < 2400 || d > 2500 {
		t.Errorf("NYC-LA distance = %v, want about 2450", d)
	}
}

func TestTitleCase(t *testing.T) {
	if got := TitleCase("gas_station"); got != "Gas Station" {
		t.Errorf("TitleCase(gas_station) = %q", got)
	}
	if got := TitleCase("restaurant"); got != "Restaurant" {
		t.Errorf("TitleCase(restaurant) = %q", got)
	}
}

func TestBuilder(t *testing.T) {
	var b Builder
	b.H1("Title")
	b.Blank()
	b.Bold("Key", "value")
	b.Field("Name", "thing")
	got := b.String()

	want := "# Title\n\n**Key**: value\n- **Name**: thing"
	if got != want {
		t.Errorf("builder output = %q, want %q", got, want)
	}
}

func TestJSONRendersIndented(t *testing.T) {
	got := JSON(map[string]any{"count": 1})
	if !strings.Contains(got, "\"count\": 1") {
		t.Errorf("JSON output = %q", got)
	}
}
