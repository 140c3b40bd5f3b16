package medicare

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"toolbridge/internal/tool"
)

const datasetFixture = `{
  "results": [
    {
      "facility_id": "110079",
      "facility_name": "EMORY UNIVERSITY HOSPITAL",
      "address": "1364 CLIFTON ROAD NE",
      "city": "ATLANTA",
      "state": "GA",
      "zip_code": "30322",
      "phone_number": "(404) 712-2000",
      "hospital_type": "Acute Care Hospitals",
      "hospital_ownership": "Voluntary non-profit - Private",
      "emergency_services": "Yes",
      "hospital_overall_rating": "5",
      "mortality_national_comparison": "Above the national average",
      "safety_of_care_national_comparison": "Above the national average",
      "readmission_national_comparison": "Same as the national average",
      "patient_experience_national_comparison": "Above the national average",
      "timeliness_of_care_national_comparison": "Below the national average",
      "effective_care_national_comparison": "Same as the national average",
      "measure_end_date": "2023-03-31"
    },
    {
      "facility_id": "110010",
      "facility_name": "GRADY MEMORIAL HOSPITAL",
      "address": "80 JESSE HILL JR DRIVE SE",
      "city": "ATLANTA",
      "state": "GA",
      "zip_code": "30303",
      "phone_number": "(404) 616-1000",
      "hospital_type": "Acute Care Hospitals",
      "hospital_ownership": "Government - Local",
      "emergency_services": "Yes",
      "hospital_overall_rating": "3",
      "mortality_national_comparison": "Same as the national average",
      "safety_of_care_national_comparison": "Below the national average",
      "readmission_national_comparison": "Same as the national average",
      "patient_experience_national_comparison": "Below the national average",
      "timeliness_of_care_national_comparison": "Below the national average",
      "effective_care_national_comparison": "Same as the national average",
      "measure_end_date": "2023-03-31"
    }
  ]
}`

// countingTransport counts round trips so tests can prove a call never
// reached the network.
type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(req)
}

func newFixtureService(t *testing.T, body string) (*Service, *countingTransport) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	ct := &countingTransport{next: http.DefaultTransport}
	svc := NewService(&http.Client{Transport: ct})
	svc.SetBaseURL(srv.URL)
	return svc, ct
}

func dispatch(t *testing.T, svc *Service, name string, args tool.Args) *tool.Result {
	t.Helper()
	r := tool.NewRegistry()
	r.MustRegister(svc.Tools()...)
	return r.Dispatch(context.Background(), name, args)
}

func TestSearchHospitalsByZip(t *testing.T) {
	svc, ct := newFixtureService(t, datasetFixture)

	res := dispatch(t, svc, "search_hospitals", tool.Args{"zip_code": "30322", "limit": 5})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(res.Payload, `"total_found": 2`) {
		t.Errorf("payload missing total_found 2:\n%s", res.Payload)
	}
	for _, id := range []string{"110079", "110010"} {
		if !strings.Contains(res.Payload, id) {
			t.Errorf("payload missing provider id %s", id)
		}
	}
	if ct.calls != 1 {
		t.Errorf("calls = %d, want 1", ct.calls)
	}
}

func TestSearchHospitalsRequiresLocation(t *testing.T) {
	svc, ct := newFixtureService(t, datasetFixture)

	res := dispatch(t, svc, "search_hospitals", tool.Args{"city": "Atlanta"})
	if res.Status != tool.StatusError {
		t.Fatal("expected error for city without state")
	}
	if !strings.Contains(res.Payload, "Error (validation)") {
		t.Errorf("payload = %q, want validation error", res.Payload)
	}
	if !strings.Contains(res.Payload, "Source: "+Source) {
		t.Errorf("payload = %q, want source line", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("calls = %d, want 0 for a rejected request", ct.calls)
	}
}

func TestGetHospitalRatingSubstringMatch(t *testing.T) {
	svc, _ := newFixtureService(t, datasetFixture)

	res := dispatch(t, svc, "get_hospital_rating", tool.Args{
		"hospital_name": "Emory University",
		"city":          "Atlanta",
		"state":         "GA",
	})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(res.Payload, `"overall_rating": "5"`) {
		t.Errorf("payload missing rating:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "EMORY UNIVERSITY HOSPITAL") {
		t.Errorf("payload missing facility name:\n%s", res.Payload)
	}
}

func TestGetHospitalRatingNoMatchIsSuccess(t *testing.T) {
	svc, _ := newFixtureService(t, datasetFixture)

	res := dispatch(t, svc, "get_hospital_rating", tool.Args{
		"hospital_name": "Nonexistent Medical Center",
		"city":          "Atlanta",
		"state":         "GA",
	})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("no match should still be a success payload, got %q", res.Status)
	}
	if !strings.Contains(res.Payload, `"status": "not_found"`) {
		t.Errorf("payload missing not_found status:\n%s", res.Payload)
	}
	if !strings.Contains(res.Payload, "Nonexistent Medical Center") {
		t.Errorf("payload should echo the searched name:\n%s", res.Payload)
	}
}

func TestGetQualityMeasuresNotFound(t *testing.T) {
	svc, _ := newFixtureService(t, `{"results": []}`)

	res := dispatch(t, svc, "get_hospital_quality_measures", tool.Args{
		"medicare_provider_id": "999999",
	})
	if res.Status != tool.StatusError {
		t.Fatal("expected error for unknown provider id")
	}
	if !strings.Contains(res.Payload, "Error (not_found)") {
		t.Errorf("payload = %q, want not_found classification", res.Payload)
	}
}

func TestCompareHospitalsUnknownIDStillSucceeds(t *testing.T) {
	svc, _ := newFixtureService(t, `{"results": []}`)

	res := dispatch(t, svc, "compare_hospitals", tool.Args{
		"hospital_ids": []any{"999999"},
	})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if !strings.Contains(res.Payload, "Not Found") {
		t.Errorf("payload missing Not Found row:\n%s", res.Payload)
	}
}

func TestCompareHospitalsRejectsTooMany(t *testing.T) {
	svc, ct := newFixtureService(t, datasetFixture)

	ids := []any{"1", "2", "3", "4", "5", "6"}
	res := dispatch(t, svc, "compare_hospitals", tool.Args{"hospital_ids": ids})
	if res.Status != tool.StatusError {
		t.Fatal("expected error for more than 5 ids")
	}
	if ct.calls != 0 {
		t.Errorf("calls = %d, want 0", ct.calls)
	}
}
