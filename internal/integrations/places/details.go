package places

import (
	"context"
	"fmt"
	"strings"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/upstream"
)

var detailsFieldMaskParts = []string{
	"displayName",
	"formattedAddress",
	"rating",
	"userRatingCount",
	"nationalPhoneNumber",
	"internationalPhoneNumber",
	"websiteUri",
	"googleMapsUri",
	"types",
	"location",
	"viewport",
	"currentOpeningHours",
	"priceLevel",
	"takeout",
	"delivery",
	"dineIn",
	"servesBreakfast",
	"servesLunch",
	"servesDinner",
	"servesBeer",
	"servesWine",
	"servesVegetarianFood",
	"wheelchairAccessibleEntrance",
	"wheelchairAccessibleParking",
	"wheelchairAccessibleRestroom",
	"wheelchairAccessibleSeating",
	"parkingOptions",
	"paymentOptions",
	"goodForChildren",
	"goodForGroups",
	"allowsDogs",
}

func (s *Service) placeDetails(ctx context.Context, args tool.Args) (string, error) {
	if err := s.checkKey(); err != nil {
		return "", err
	}
	placeID := args.String("place_id")
	includeReviews := args.Bool("include_reviews")
	maxReviews := args.Int("max_reviews")
	respFormat := args.String("response_format")

	mask := detailsFieldMaskParts
	if includeReviews {
		mask = append(append([]string{}, mask...), "reviews")
	}

	var p place
	err := s.places.Do(ctx, upstream.Request{
		Method:  "GET",
		Path:    "places/" + placeID,
		Headers: map[string]string{"X-Goog-FieldMask": strings.Join(mask, ",")},
	}, &p)
	if err != nil {
		return "", err
	}

	reviews := p.Reviews
	if len(reviews) > maxReviews {
		reviews = reviews[:maxReviews]
	}

	var result string
	if respFormat == format.JSONMode {
		payload := map[string]any{
			"name":               p.DisplayName.Text,
			"address":            p.FormattedAddress,
			"phone":              p.NationalPhoneNumber,
			"website":            p.WebsiteURI,
			"google_maps_url":    p.GoogleMapsURI,
			"rating":             p.Rating,
			"user_ratings_total": p.UserRatingCount,
			"types":              p.Types,
			"price_level":        p.PriceLevel,
			"coordinates":        p.Location,
			"opening_hours":      p.CurrentOpeningHours,
			"features": map[string]any{
				"takeout":           p.Takeout,
				"delivery":          p.Delivery,
				"dine_in":           p.DineIn,
				"good_for_children": p.GoodForChildren,
				"good_for_groups":   p.GoodForGroups,
				"allows_dogs":       p.AllowsDogs,
			},
			"accessibility": map[string]any{
				"wheelchair_accessible_entrance": p.WheelchairAccessibleEntrance,
				"wheelchair_accessible_parking":  p.WheelchairAccessibleParking,
				"wheelchair_accessible_restroom": p.WheelchairAccessibleRestroom,
				"wheelchair_accessible_seating":  p.WheelchairAccessibleSeating,
			},
			"parking_options": p.ParkingOptions,
			"payment_options": p.PaymentOptions,
		}
		if includeReviews {
			out := make([]map[string]any, 0, len(reviews))
			for _, r := range reviews {
				out = append(out, map[string]any{
					"author":        r.AuthorAttribution.DisplayName,
					"rating":        r.Rating,
					"text":          r.Text.Text,
					"relative_time": r.RelativePublishTimeDescription,
				})
			}
			payload["reviews"] = out
		}
		result = format.JSON(payload)
	} else {
		result = s.detailsMarkdown(&p, reviews, includeReviews)
	}

	return format.Truncate(result, "Try setting include_reviews=false or reducing max_reviews."), nil
}

func (s *Service) detailsMarkdown(p *place, reviews []review, includeReviews bool) string {
	var b format.Builder

	name := p.DisplayName.Text
	if name == "" {
		name = "Unknown Place"
	}
	b.H1(name)
	if p.Rating > 0 {
		b.Linef("⭐ %g rating (%d reviews)", p.Rating, p.UserRatingCount)
	}
	b.Blank()

	b.H2("Basic Information")
	b.Field("Address", p.FormattedAddress)
	if p.NationalPhoneNumber != "" {
		b.Field("Phone", p.NationalPhoneNumber)
	}
	if p.WebsiteURI != "" {
		b.Field("Website", p.WebsiteURI)
	}
	if p.GoogleMapsURI != "" {
		b.Field("Google Maps", p.GoogleMapsURI)
	}
	if len(p.Types) > 0 {
		b.Field("Type", format.TitleCase(p.Types[0]))
	}
	if p.PriceLevel != "" {
		b.Field("Price Level", format.TitleCase(strings.TrimPrefix(p.PriceLevel, "PRICE_LEVEL_")))
	}
	if p.Location.Latitude != 0 {
		b.Field("Coordinates", fmt.Sprintf("%g, %g", p.Location.Latitude, p.Location.Longitude))
	}
	b.Blank()

	if p.CurrentOpeningHours != nil && len(p.CurrentOpeningHours.WeekdayDescriptions) > 0 {
		b.H2("Hours")
		for _, day := range p.CurrentOpeningHours.WeekdayDescriptions {
			b.Line("- " + day)
		}
		b.Blank()
	}

	var features []string
	for _, f := range []struct {
		on    bool
		label string
	}{
		{p.Takeout, "Takeout"},
		{p.Delivery, "Delivery"},
		{p.DineIn, "Dine-in"},
		{p.ServesBreakfast, "Breakfast"},
		{p.ServesLunch, "Lunch"},
		{p.ServesDinner, "Dinner"},
		{p.ServesBeer, "Beer"},
		{p.ServesWine, "Wine"},
		{p.ServesVegetarianFood, "Vegetarian options"},
		{p.GoodForChildren, "Good for children"},
		{p.GoodForGroups, "Good for groups"},
		{p.AllowsDogs, "Dogs allowed"},
	} {
		if f.on {
			features = append(features, f.label)
		}
	}
	if len(features) > 0 {
		b.H2("Features & Amenities")
		b.Line("- " + strings.Join(features, ", "))
		b.Blank()
	}

	var accessibility []string
	for _, a := range []struct {
		on    bool
		label string
	}{
		{p.WheelchairAccessibleEntrance, "Wheelchair accessible entrance"},
		{p.WheelchairAccessibleParking, "Wheelchair accessible parking"},
		{p.WheelchairAccessibleRestroom, "Wheelchair accessible restroom"},
		{p.WheelchairAccessibleSeating, "Wheelchair accessible seating"},
	} {
		if a.on {
			accessibility = append(accessibility, a.label)
		}
	}
	if len(accessibility) > 0 {
		b.H2("Accessibility")
		for _, item := range accessibility {
			b.Line("- " + item)
		}
		b.Blank()
	}

	if p.ParkingOptions != nil || p.PaymentOptions != nil {
		b.H2("Parking & Payment")
		if pk := p.ParkingOptions; pk != nil {
			if pk.FreeParkingLot {
				b.Line("- Free parking available")
			}
			if pk.PaidParkingLot {
				b.Line("- Paid parking lot")
			}
			if pk.PaidStreetParking {
				b.Line("- Paid street parking")
			}
			if pk.ValetParking {
				b.Line("- Valet parking")
			}
		}
		if pm := p.PaymentOptions; pm != nil {
			if pm.AcceptsCreditCards {
				b.Line("- Accepts credit cards")
			}
			if pm.AcceptsDebitCards {
				b.Line("- Accepts debit cards")
			}
			if pm.AcceptsCashOnly {
				b.Line("- Accepts cash only")
			}
			if pm.AcceptsNFC {
				b.Line("- Accepts NFC payments")
			}
		}
		b.Blank()
	}

	if includeReviews && len(reviews) > 0 {
		b.H2(fmt.Sprintf("Recent Reviews (showing %d of %d)", len(reviews), p.UserRatingCount))
		b.Blank()
		for _, r := range reviews {
			author := r.AuthorAttribution.DisplayName
			if author == "" {
				author = "Anonymous"
			}
			b.H3(fmt.Sprintf("⭐ %g - %s (%s)", r.Rating, author, r.RelativePublishTimeDescription))
			text := r.Text.Text
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			if text != "" {
				b.Line(text)
			}
			b.Blank()
		}
	}

	return b.String()
}
