package tool

import (
	"context"
	"time"
)

// Result status values. There are exactly two; an error Result carries a
// canned message, never raw upstream data.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Handler runs one validated tool invocation and returns the formatted
// payload. Errors should be *toolerr.Error values so the registry can
// classify them; anything else is reported as a generic upstream failure.
type Handler func(ctx context.Context, args Args) (string, error)

// Definition describes a single tool: its name, input schema, and handler.
// Definitions are built at process start and never change afterwards.
type Definition struct {
	Name        string
	Description string
	// Source names the upstream data source, e.g. "Medicare Hospital
	// Compare (data.cms.gov)". It is attached to every Result and included
	// in error messages.
	Source string
	// ReadOnly marks tools that never mutate upstream state.
	ReadOnly bool
	Schema   Schema
	Handler  Handler
}

// Result is the immutable outcome of one tool invocation.
type Result struct {
	Status    string
	Payload   string
	Source    string
	Timestamp time.Time
}

// Args is the validated argument map passed to a handler. Values hold the
// shapes produced by encoding/json: string, float64, bool, []any.
type Args map[string]any

func (a Args) Has(key string) bool {
	v, ok := a[key]
	return ok && v != nil
}

func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

func (a Args) Bool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

func (a Args) Float(key string) float64 {
	switch v := a[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (a Args) Int(key string) int {
	switch v := a[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Strings returns a string-array argument. Non-string elements are skipped;
// validation has already rejected them for declared array-of-string fields.
func (a Args) Strings(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		if ss, ok := a[key].([]string); ok {
			return ss
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
