package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"toolbridge/internal/toolerr"
)

func TestGetJSONDecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "hello" {
			t.Errorf("query q = %q, want hello", got)
		}
		w.Write([]byte(`{"value": "ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Test API", srv.Client())
	var out struct {
		Value string `json:"value"`
	}
	if err := c.GetJSON(context.Background(), "thing", map[string][]string{"q": {"hello"}}, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if out.Value != "ok" {
		t.Errorf("value = %q, want ok", out.Value)
	}
}

func TestPostJSONSendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Test API", srv.Client())
	if err := c.PostJSON(context.Background(), "thing", map[string]string{"a": "b"}, nil); err != nil {
		t.Fatalf("PostJSON: %v", err)
	}
}

func TestStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   toolerr.Kind
	}{
		{401, toolerr.Authentication},
		{403, toolerr.Authentication},
		{404, toolerr.NotFound},
		{429, toolerr.RateLimit},
		{500, toolerr.Upstream},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(`{}`))
		}))
		c := New(srv.URL, "Test API", srv.Client())
		err := c.GetJSON(context.Background(), "x", nil, nil)
		srv.Close()
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		if got := toolerr.KindOf(err); got != tc.want {
			t.Errorf("status %d: kind = %v, want %v", tc.status, got, tc.want)
		}
		if !strings.Contains(err.Error(), "Test API") {
			t.Errorf("status %d: error %q does not name the source", tc.status, err)
		}
	}
}

func TestErrorDetailFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "field mask is required", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Test API", srv.Client())
	err := c.GetJSON(context.Background(), "x", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "field mask is required") {
		t.Errorf("error %q missing upstream detail", err)
	}
}

func TestAsanaStyleErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors": [{"message": "workspace: Missing input"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Asana API", srv.Client())
	err := c.GetJSON(context.Background(), "tasks", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "workspace: Missing input") {
		t.Errorf("error %q missing upstream detail", err)
	}
}

func TestNoContentIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "Test API", srv.Client())
	var out map[string]any
	if err := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: "x"}, &out); err != nil {
		t.Fatalf("204 should be success, got %v", err)
	}
}

func TestConfigurableRateLimitStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "Test API", srv.Client())
	c.RateLimitStatuses = []int{429, 503}
	err := c.GetJSON(context.Background(), "x", nil, nil)
	if got := toolerr.KindOf(err); got != toolerr.RateLimit {
		t.Errorf("kind = %v, want RateLimit", got)
	}
}

func TestAuthorizers(t *testing.T) {
	var gotHeader, gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Goog-Api-Key")
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("key")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "Test API", srv.Client())
	c.Authorize = HeaderKey("X-Goog-Api-Key", "secret1")
	c.GetJSON(context.Background(), "x", nil, nil)
	if gotHeader != "secret1" {
		t.Errorf("header key = %q", gotHeader)
	}

	c.Authorize = Bearer("secret2")
	c.GetJSON(context.Background(), "x", nil, nil)
	if gotAuth != "Bearer secret2" {
		t.Errorf("authorization = %q", gotAuth)
	}

	c.Authorize = QueryKey("key", "secret3")
	c.GetJSON(context.Background(), "x", nil, nil)
	if gotQuery != "secret3" {
		t.Errorf("query key = %q", gotQuery)
	}
}

func TestTransportFailureIsNetwork(t *testing.T) {
	c := New("http://127.0.0.1:1", "Test API", &http.Client{})
	err := c.GetJSON(context.Background(), "x", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := toolerr.KindOf(err); got != toolerr.Network {
		t.Errorf("kind = %v, want Network", got)
	}
}
