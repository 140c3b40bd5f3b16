// Package medicare adapts the Medicare Hospital Compare dataset on
// data.cms.gov. The dataset is public; no credential is required.
package medicare

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"toolbridge/internal/format"
	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
	"toolbridge/internal/upstream"
)

const (
	// Source names the dataset in results and error messages.
	Source = "Medicare Hospital Compare (data.cms.gov)"

	defaultBaseURL = "https://data.cms.gov/provider-data/api/1"

	// ratingsDataset is the Hospital Overall Ratings datastore.
	ratingsDataset = "datastore/query/4pq5-n9py"
)

// Service holds the upstream client for the ratings dataset.
type Service struct {
	client *upstream.Client
}

// NewService builds the service. A nil httpClient gets the default timeout.
func NewService(httpClient *http.Client) *Service {
	return &Service{
		client: upstream.New(defaultBaseURL, Source, httpClient),
	}
}

// SetBaseURL points the service at a different endpoint, used by tests.
func (s *Service) SetBaseURL(u string) { s.client.BaseURL = u }

// facility is one row of the ratings dataset.
type facility struct {
	FacilityID        string `json:"facility_id"`
	FacilityName      string `json:"facility_name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	ZipCode           string `json:"zip_code"`
	PhoneNumber       string `json:"phone_number"`
	HospitalType      string `json:"hospital_type"`
	HospitalOwnership string `json:"hospital_ownership"`
	EmergencyServices string `json:"emergency_services"`
	OverallRating     string `json:"hospital_overall_rating"`
	RatingFootnote    string `json:"hospital_overall_rating_footnote"`
	Mortality         string `json:"mortality_national_comparison"`
	Safety            string `json:"safety_of_care_national_comparison"`
	Readmission       string `json:"readmission_national_comparison"`
	PatientExperience string `json:"patient_experience_national_comparison"`
	Timeliness        string `json:"timeliness_of_care_national_comparison"`
	EffectiveCare     string `json:"effective_care_national_comparison"`
	MeasureEndDate    string `json:"measure_end_date"`
}

type queryResponse struct {
	Results []facility `json:"results"`
}

// filterQuery builds the datastore filter syntax for one column.
func filterQuery(q url.Values, name, path, value string) {
	q.Set(fmt.Sprintf("filter[%s][condition][path]", name), path)
	q.Set(fmt.Sprintf("filter[%s][condition][operator]", name), "=")
	q.Set(fmt.Sprintf("filter[%s][condition][value]", name), value)
}

func (s *Service) query(ctx context.Context, q url.Values) ([]facility, error) {
	var resp queryResponse
	if err := s.client.GetJSON(ctx, ratingsDataset, q, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Tools returns the tool definitions for this integration.
func (s *Service) Tools() []*tool.Definition {
	return []*tool.Definition{
		{
			Name:        "get_hospital_rating",
			Description: "Get the overall Medicare quality rating (1-5 stars) for a hospital by name and location.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"hospital_name": {Type: tool.TypeString, Description: "Name of the hospital", Required: true, MinLen: 1},
				"city":          {Type: tool.TypeString, Description: "City where the hospital is located", Required: true, MinLen: 1},
				"state":         {Type: tool.TypeString, Description: "State abbreviation, e.g. 'GA'", Required: true, MinLen: 2, MaxLen: 2},
			},
			Handler: s.getHospitalRating,
		},
		{
			Name:        "search_hospitals",
			Description: "Search for hospitals by ZIP code or by city and state.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"zip_code": {Type: tool.TypeString, Description: "ZIP code to search"},
				"city":     {Type: tool.TypeString, Description: "City name, requires state"},
				"state":    {Type: tool.TypeString, Description: "State abbreviation"},
				"limit":    {Type: tool.TypeInteger, Description: "Maximum number of results", Default: 10, Min: tool.Num(1), Max: tool.Num(50)},
			},
			Handler: s.searchHospitals,
		},
		{
			Name:        "get_hospital_quality_measures",
			Description: "Get detailed quality measures by category for a hospital identified by its Medicare Provider ID.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"medicare_provider_id": {Type: tool.TypeString, Description: "Medicare Provider ID (6-digit number)", Required: true, MinLen: 1},
			},
			Handler: s.getQualityMeasures,
		},
		{
			Name:        "compare_hospitals",
			Description: "Compare up to 5 hospitals side-by-side by their Medicare Provider IDs.",
			Source:      Source,
			ReadOnly:    true,
			Schema: tool.Schema{
				"hospital_ids": {
					Type: tool.TypeArray, Description: "Medicare Provider IDs to compare", Required: true,
					MinItems: 1, MaxItems: 5,
					Items: &tool.Field{Type: tool.TypeString},
				},
			},
			Handler: s.compareHospitals,
		},
	}
}

type ratingPayload struct {
	HospitalName      string `json:"hospital_name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	ZipCode           string `json:"zip_code"`
	Phone             string `json:"phone"`
	HospitalType      string `json:"hospital_type"`
	Ownership         string `json:"ownership"`
	OverallRating     string `json:"overall_rating"`
	RatingScale       string `json:"rating_scale"`
	RatingFootnote    string `json:"rating_footnote,omitempty"`
	Mortality         string `json:"mortality_rating"`
	Safety            string `json:"safety_rating"`
	Readmission       string `json:"readmission_rating"`
	PatientExperience string `json:"patient_experience_rating"`
	Timeliness        string `json:"timeliness_rating"`
	Effectiveness     string `json:"effectiveness_rating"`
	ProviderID        string `json:"medicare_provider_id"`
	EmergencyServices string `json:"emergency_services"`
	DataDate          string `json:"data_date,omitempty"`
}

func (s *Service) getHospitalRating(ctx context.Context, args tool.Args) (string, error) {
	name := args.String("hospital_name")
	city := args.String("city")
	state := args.String("state")

	q := url.Values{}
	filterQuery(q, "state", "state", strings.ToUpper(state))
	filterQuery(q, "city", "city", strings.ToUpper(city))
	q.Set("limit", "100")

	results, err := s.query(ctx, q)
	if err != nil {
		return "", err
	}

	nameLower := strings.ToLower(name)
	var match *facility
	for i := range results {
		fn := strings.ToLower(results[i].FacilityName)
		if strings.Contains(fn, nameLower) || strings.Contains(nameLower, fn) {
			match = &results[i]
			break
		}
	}
	if match == nil {
		return format.JSON(map[string]any{
			"status":  "not_found",
			"message": fmt.Sprintf("No hospital found matching '%s' in %s, %s", name, city, state),
			"searched": map[string]string{
				"hospital_name": name,
				"city":          city,
				"state":         state,
			},
			"suggestion": "Try searching by location first to see available hospitals",
		}), nil
	}

	return format.JSON(ratingPayload{
		HospitalName:      match.FacilityName,
		Address:           match.Address,
		City:              match.City,
		State:             match.State,
		ZipCode:           match.ZipCode,
		Phone:             match.PhoneNumber,
		HospitalType:      match.HospitalType,
		Ownership:         match.HospitalOwnership,
		OverallRating:     match.OverallRating,
		RatingScale:       "1-5 stars (5 is best)",
		RatingFootnote:    match.RatingFootnote,
		Mortality:         match.Mortality,
		Safety:            match.Safety,
		Readmission:       match.Readmission,
		PatientExperience: match.PatientExperience,
		Timeliness:        match.Timeliness,
		Effectiveness:     match.EffectiveCare,
		ProviderID:        match.FacilityID,
		EmergencyServices: match.EmergencyServices,
		DataDate:          match.MeasureEndDate,
	}), nil
}

type hospitalSummary struct {
	HospitalName      string `json:"hospital_name"`
	Address           string `json:"address"`
	City              string `json:"city"`
	State             string `json:"state"`
	ZipCode           string `json:"zip_code"`
	Phone             string `json:"phone"`
	OverallRating     string `json:"overall_rating"`
	HospitalType      string `json:"hospital_type"`
	Ownership         string `json:"ownership"`
	EmergencyServices string `json:"emergency_services"`
	ProviderID        string `json:"medicare_provider_id"`
}

func (s *Service) searchHospitals(ctx context.Context, args tool.Args) (string, error) {
	zip := args.String("zip_code")
	city := args.String("city")
	state := args.String("state")
	limit := args.Int("limit")

	if zip == "" && (city == "" || state == "") {
		return "", toolerr.Validationf("must provide either zip_code or both city and state")
	}

	q := url.Values{}
	if zip != "" {
		filterQuery(q, "zip", "zip_code", zip)
	}
	if state != "" {
		filterQuery(q, "state", "state", strings.ToUpper(state))
	}
	if city != "" {
		filterQuery(q, "city", "city", strings.ToUpper(city))
	}
	q.Set("limit", strconv.Itoa(limit))

	results, err := s.query(ctx, q)
	if err != nil {
		return "", err
	}

	hospitals := make([]hospitalSummary, 0, len(results))
	for _, h := range results {
		hospitals = append(hospitals, hospitalSummary{
			HospitalName:      h.FacilityName,
			Address:           h.Address,
			City:              h.City,
			State:             h.State,
			ZipCode:           h.ZipCode,
			Phone:             h.PhoneNumber,
			OverallRating:     h.OverallRating,
			HospitalType:      h.HospitalType,
			Ownership:         h.HospitalOwnership,
			EmergencyServices: h.EmergencyServices,
			ProviderID:        h.FacilityID,
		})
	}

	return format.JSON(map[string]any{
		"search_params": map[string]string{
			"zip_code": zip,
			"city":     city,
			"state":    state,
		},
		"total_found": len(hospitals),
		"hospitals":   hospitals,
	}), nil
}

type comparisonMeasure struct {
	NationalComparison string `json:"national_comparison"`
	Description        string `json:"description"`
}

type qualityMeasures struct {
	OverallRating struct {
		Rating      string `json:"rating"`
		RatingScale string `json:"rating_scale"`
		Footnote    string `json:"footnote,omitempty"`
	} `json:"overall_rating"`
	Mortality         comparisonMeasure `json:"mortality"`
	SafetyOfCare      comparisonMeasure `json:"safety_of_care"`
	Readmission       comparisonMeasure `json:"readmission"`
	PatientExperience comparisonMeasure `json:"patient_experience"`
	TimelinessOfCare  comparisonMeasure `json:"timeliness_of_care"`
	EffectiveCare     comparisonMeasure `json:"effective_care"`
}

// ratingGuide explains the national-comparison phrasing the dataset uses.
var ratingGuide = map[string]string{
	"Above the national average":   "Better than most hospitals",
	"Same as the national average": "Similar to most hospitals",
	"Below the national average":   "Worse than most hospitals",
	"Not Available":                "Insufficient data",
}

func measuresOf(h *facility) qualityMeasures {
	var m qualityMeasures
	m.OverallRating.Rating = h.OverallRating
	m.OverallRating.RatingScale = "1-5 stars"
	m.OverallRating.Footnote = h.RatingFootnote
	m.Mortality = comparisonMeasure{h.Mortality, "Death rates for common conditions"}
	m.SafetyOfCare = comparisonMeasure{h.Safety, "Infections, complications, medical errors"}
	m.Readmission = comparisonMeasure{h.Readmission, "Rate of patients readmitted within 30 days"}
	m.PatientExperience = comparisonMeasure{h.PatientExperience, "Patient survey results (HCAHPS)"}
	m.TimelinessOfCare = comparisonMeasure{h.Timeliness, "How quickly patients receive care"}
	m.EffectiveCare = comparisonMeasure{h.EffectiveCare, "Following best practices for treatment"}
	return m
}

func (s *Service) lookupByProviderID(ctx context.Context, providerID string) (*facility, error) {
	q := url.Values{}
	filterQuery(q, "id", "facility_id", providerID)

	results, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

func (s *Service) getQualityMeasures(ctx context.Context, args tool.Args) (string, error) {
	providerID := args.String("medicare_provider_id")

	h, err := s.lookupByProviderID(ctx, providerID)
	if err != nil {
		return "", err
	}
	if h == nil {
		return "", toolerr.NotFoundf("no hospital found with Medicare Provider ID: %s", providerID)
	}

	return format.JSON(map[string]any{
		"hospital_name":        h.FacilityName,
		"medicare_provider_id": providerID,
		"quality_measures":     measuresOf(h),
		"rating_guide":         ratingGuide,
		"data_date":            h.MeasureEndDate,
	}), nil
}

type comparisonRow struct {
	HospitalName      string `json:"hospital_name"`
	ProviderID        string `json:"medicare_provider_id"`
	OverallRating     string `json:"overall_rating,omitempty"`
	Mortality         string `json:"mortality,omitempty"`
	Safety            string `json:"safety,omitempty"`
	Readmission       string `json:"readmission,omitempty"`
	PatientExperience string `json:"patient_experience,omitempty"`
	Timeliness        string `json:"timeliness,omitempty"`
	Effectiveness     string `json:"effectiveness,omitempty"`
	Error             string `json:"error,omitempty"`
}

// compareHospitals looks up each provider id in turn. An unknown id becomes
// a "Not Found" row; the call as a whole still succeeds.
func (s *Service) compareHospitals(ctx context.Context, args tool.Args) (string, error) {
	ids := args.Strings("hospital_ids")

	rows := make([]comparisonRow, 0, len(ids))
	for _, id := range ids {
		h, err := s.lookupByProviderID(ctx, id)
		if err != nil {
			return "", err
		}
		if h == nil {
			rows = append(rows, comparisonRow{
				HospitalName: "Not Found",
				ProviderID:   id,
				Error:        "Hospital data not available",
			})
			continue
		}
		rows = append(rows, comparisonRow{
			HospitalName:      h.FacilityName,
			ProviderID:        id,
			OverallRating:     h.OverallRating,
			Mortality:         h.Mortality,
			Safety:            h.Safety,
			Readmission:       h.Readmission,
			PatientExperience: h.PatientExperience,
			Timeliness:        h.Timeliness,
			Effectiveness:     h.EffectiveCare,
		})
	}

	return format.JSON(map[string]any{
		"total_compared": len(rows),
		"hospitals":      rows,
	}), nil
}
