// Package upstream is the shared HTTP caller the integrations build on. It
// issues the request, classifies failures into the closed error taxonomy,
// and decodes JSON bodies.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"toolbridge/internal/toolerr"
)

// DefaultTimeout bounds a single upstream call unless the caller overrides it.
const DefaultTimeout = 30 * time.Second

// Authorizer attaches credentials to an outgoing request.
type Authorizer func(*http.Request)

// QueryKey authorizes by appending an API key query parameter.
func QueryKey(param, key string) Authorizer {
	return func(req *http.Request) {
		q := req.URL.Query()
		q.Set(param, key)
		req.URL.RawQuery = q.Encode()
	}
}

// HeaderKey authorizes by setting a header, e.g. X-Goog-Api-Key.
func HeaderKey(name, key string) Authorizer {
	return func(req *http.Request) {
		req.Header.Set(name, key)
	}
}

// Bearer authorizes with an OAuth bearer token.
func Bearer(token string) Authorizer {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Client calls one upstream API. Source names the service in every error so
// failures are attributable; RateLimitStatuses lists the status codes that
// service uses for throttling.
type Client struct {
	BaseURL           string
	Source            string
	HTTP              *http.Client
	RateLimitStatuses []int
	Authorize         Authorizer
	Headers           map[string]string
}

// New returns a client with the default timeout. Pass a non-nil httpClient
// to share a transport or to stub the network in tests.
func New(baseURL, source string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		BaseURL:           baseURL,
		Source:            source,
		HTTP:              httpClient,
		RateLimitStatuses: []int{http.StatusTooManyRequests},
	}
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Request describes one upstream call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Do executes the request and decodes a JSON response into out when out is
// non-nil. A 204 response is treated as success with an empty body.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	body, err := c.raw(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if derr := json.Unmarshal(body, out); derr != nil {
		return toolerr.New(toolerr.Upstream, "%s returned an unparseable response: %v", c.Source, derr)
	}
	return nil
}

// DoRaw executes the request and returns the raw body. Routes matrix
// responses arrive as JSON Lines and need per-line decoding by the caller.
func (c *Client) DoRaw(ctx context.Context, r Request) ([]byte, error) {
	return c.raw(ctx, r)
}

func (c *Client) raw(ctx context.Context, r Request) ([]byte, error) {
	u := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(r.Path, "/")
	var reader io.Reader
	if r.Body != nil {
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return nil, toolerr.New(toolerr.Upstream, "%s request could not be encoded: %v", c.Source, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, u, reader)
	if err != nil {
		return nil, toolerr.New(toolerr.Upstream, "%s request could not be built: %v", c.Source, err)
	}
	if len(r.Query) > 0 {
		q := req.URL.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if c.Authorize != nil {
		c.Authorize(req)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		terr := toolerr.FromTransport(err)
		return nil, toolerr.New(terr.Kind, "%s: %s", c.Source, terr.Message)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, toolerr.New(toolerr.Network, "%s response could not be read: %v", c.Source, err)
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := toolerr.FromStatus(resp.StatusCode, c.RateLimitStatuses)
		detail := upstreamDetail(body)
		msg := fmt.Sprintf("%s: %s", c.Source, serr.Message)
		if detail != "" {
			msg = fmt.Sprintf("%s: %s (%s)", c.Source, serr.Message, detail)
		}
		return nil, toolerr.New(serr.Kind, "%s", msg)
	}
	return body, nil
}

// upstreamDetail pulls a human-readable message out of a JSON error body.
// Google APIs nest it under "error", Asana under "errors".
func upstreamDetail(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	switch {
	case envelope.Error.Message != "":
		return envelope.Error.Message
	case len(envelope.Errors) > 0 && envelope.Errors[0].Message != "":
		return envelope.Errors[0].Message
	case envelope.Message != "":
		return envelope.Message
	}
	return ""
}
