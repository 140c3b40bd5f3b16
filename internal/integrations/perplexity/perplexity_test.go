package perplexity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"toolbridge/internal/tool"
	"toolbridge/internal/toolerr"
)

const completionFixture = `{
  "id": "cmpl-1",
  "object": "chat.completion",
  "model": "sonar",
  "choices": [
    {
      "index": 0,
      "message": {"role": "assistant", "content": "  Atlanta is the capital of Georgia.  "},
      "finish_reason": "stop"
    }
  ]
}`

type countingTransport struct {
	calls int
	next  http.RoundTripper
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return t.next.RoundTrip(req)
}

func newFixtureService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewService("test-key", srv.Client())
	svc.SetBaseURL(srv.URL)
	return svc
}

func dispatch(t *testing.T, svc *Service, name string, args tool.Args) *tool.Result {
	t.Helper()
	r := tool.NewRegistry()
	r.MustRegister(svc.Tools()...)
	return r.Dispatch(context.Background(), name, args)
}

func TestAskReturnsTrimmedAnswer(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody []byte
	svc := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionFixture))
	})

	res := dispatch(t, svc, "perplexity_ask", tool.Args{"query": "What is the capital of Georgia?"})
	if res.Status != tool.StatusSuccess {
		t.Fatalf("status = %q, payload = %q", res.Status, res.Payload)
	}
	if res.Payload != "Atlanta is the capital of Georgia." {
		t.Errorf("payload = %q", res.Payload)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Model != "sonar" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if req.Messages[0].Content != "What is the capital of Georgia?" {
		t.Errorf("content = %q", req.Messages[0].Content)
	}
}

func TestMissingKeyIsConfigurationError(t *testing.T) {
	ct := &countingTransport{next: http.DefaultTransport}
	svc := NewService("", &http.Client{Transport: ct})

	res := dispatch(t, svc, "perplexity_ask", tool.Args{"query": "anything"})
	if res.Status != tool.StatusError {
		t.Fatalf("status = %q", res.Status)
	}
	if !strings.Contains(res.Payload, "Error (configuration)") {
		t.Errorf("payload = %q", res.Payload)
	}
	if !strings.Contains(res.Payload, "PERPLEXITY_API_KEY") {
		t.Errorf("payload = %q", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("upstream calls = %d, want 0", ct.calls)
	}
}

func TestEmptyQueryRejectedBeforeNetwork(t *testing.T) {
	ct := &countingTransport{next: http.DefaultTransport}
	svc := NewService("test-key", &http.Client{Transport: ct})

	res := dispatch(t, svc, "perplexity_ask", tool.Args{"query": ""})
	if res.Status != tool.StatusError {
		t.Fatalf("status = %q", res.Status)
	}
	if !strings.Contains(res.Payload, "Error (validation)") {
		t.Errorf("payload = %q", res.Payload)
	}
	if ct.calls != 0 {
		t.Errorf("upstream calls = %d, want 0", ct.calls)
	}
}

func TestUpstreamStatusesClassified(t *testing.T) {
	tests := []struct {
		status int
		want   toolerr.Kind
	}{
		{http.StatusUnauthorized, toolerr.Authentication},
		{http.StatusTooManyRequests, toolerr.RateLimit},
		{http.StatusInternalServerError, toolerr.Upstream},
	}
	for _, tt := range tests {
		svc := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`{"error": {"message": "nope", "type": "invalid_request_error"}}`))
		})

		res := dispatch(t, svc, "perplexity_ask", tool.Args{"query": "anything"})
		if res.Status != tool.StatusError {
			t.Fatalf("status %d: result status = %q", tt.status, res.Status)
		}
		want := "Error (" + tt.want.String() + ")"
		if !strings.Contains(res.Payload, want) {
			t.Errorf("status %d: payload = %q, want %q", tt.status, res.Payload, want)
		}
		if !strings.Contains(res.Payload, "Source: Perplexity AI") {
			t.Errorf("status %d: payload %q lacks source", tt.status, res.Payload)
		}
	}
}

func TestNoChoicesIsUpstreamError(t *testing.T) {
	svc := newFixtureService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "cmpl-2", "object": "chat.completion", "choices": []}`))
	})

	res := dispatch(t, svc, "perplexity_ask", tool.Args{"query": "anything"})
	if res.Status != tool.StatusError {
		t.Fatalf("status = %q", res.Status)
	}
	if !strings.Contains(res.Payload, "Error (upstream)") {
		t.Errorf("payload = %q", res.Payload)
	}
}
