package tool

import (
	"fmt"
	"math"
	"strings"

	"toolbridge/internal/toolerr"
)

// Validate checks args against the schema before any network I/O happens.
// The first violation found is returned as a Validation error naming the
// offending field and the constraint, e.g. "radius_miles must be between
// 0.1 and 50". Unknown fields are rejected outright.
func (s Schema) Validate(args Args) error {
	for name := range args {
		if _, ok := s[name]; !ok {
			return toolerr.Validationf("unexpected field %q", name)
		}
	}
	for name, f := range s {
		v, ok := args[name]
		if !ok || v == nil {
			if f.Required {
				return toolerr.Validationf("%s is required", name)
			}
			continue
		}
		if err := f.check(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (f Field) check(name string, v any) error {
	switch f.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return toolerr.Validationf("%s must be a string", name)
		}
		return f.checkString(name, s)
	case TypeNumber:
		n, ok := asNumber(v)
		if !ok {
			return toolerr.Validationf("%s must be a number", name)
		}
		return f.checkBounds(name, n)
	case TypeInteger:
		n, ok := asNumber(v)
		if !ok || n != math.Trunc(n) {
			return toolerr.Validationf("%s must be an integer", name)
		}
		return f.checkBounds(name, n)
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return toolerr.Validationf("%s must be a boolean", name)
		}
		return nil
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return toolerr.Validationf("%s must be an array", name)
		}
		return f.checkArray(name, items)
	default:
		return fmt.Errorf("schema for %s declares unknown type %q", name, f.Type)
	}
}

func (f Field) checkString(name, s string) error {
	if len(f.Enum) > 0 {
		for _, allowed := range f.Enum {
			if s == allowed {
				return nil
			}
		}
		return toolerr.Validationf("%s must be one of: %s", name, strings.Join(f.Enum, ", "))
	}
	n := len(s)
	if f.MinLen > 0 && n < f.MinLen {
		return toolerr.Validationf("%s must be at least %d characters", name, f.MinLen)
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return toolerr.Validationf("%s must be at most %d characters", name, f.MaxLen)
	}
	return nil
}

func (f Field) checkBounds(name string, n float64) error {
	switch {
	case f.Min != nil && f.Max != nil && (n < *f.Min || n > *f.Max):
		return toolerr.Validationf("%s must be between %v and %v", name, *f.Min, *f.Max)
	case f.Min != nil && n < *f.Min:
		return toolerr.Validationf("%s must be at least %v", name, *f.Min)
	case f.Max != nil && n > *f.Max:
		return toolerr.Validationf("%s must be at most %v", name, *f.Max)
	}
	return nil
}

func (f Field) checkArray(name string, items []any) error {
	if f.MinItems > 0 && len(items) < f.MinItems {
		return toolerr.Validationf("%s must have at least %d items", name, f.MinItems)
	}
	if f.MaxItems > 0 && len(items) > f.MaxItems {
		return toolerr.Validationf("%s must have at most %d items", name, f.MaxItems)
	}
	if f.Items != nil {
		for i, item := range items {
			if err := f.Items.check(fmt.Sprintf("%s[%d]", name, i), item); err != nil {
				return err
			}
		}
	}
	return nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
