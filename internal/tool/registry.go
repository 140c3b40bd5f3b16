package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"toolbridge/internal/toolerr"
)

// Registry holds the immutable name→definition table for one server. It is
// populated at process start and only read afterwards; the lock exists so
// the table is safely shareable, not because dispatch is concurrent.
type Registry struct {
	defs map[string]*Definition
	mu   sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Register adds a definition. A duplicate name is a startup-time bug and is
// returned as an error so main can abort the process.
func (r *Registry) Register(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.Name == "" {
		return fmt.Errorf("tool definition has no name")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s has no handler", def.Name)
	}
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("tool %s already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// MustRegister registers a batch and panics on collision. Used only during
// startup where a malformed tool table must abort the process.
func (r *Registry) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Get(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	return def, ok
}

// List returns all definitions sorted by name.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		defs = append(defs, d)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch runs one invocation: lookup, validate, default-fill, handle. It
// always returns a Result; failures of any kind become an error Result and
// never escape as a panic or crash the process.
func (r *Registry) Dispatch(ctx context.Context, name string, args Args) *Result {
	def, ok := r.Get(name)
	if !ok {
		return &Result{
			Status:    StatusError,
			Payload:   fmt.Sprintf("Error: tool %q not found", name),
			Timestamp: time.Now().UTC(),
		}
	}

	if args == nil {
		args = Args{}
	}
	if err := def.Schema.Validate(args); err != nil {
		return errorResult(def, err)
	}

	payload, err := def.Handler(ctx, def.Schema.ApplyDefaults(args))
	if err != nil {
		return errorResult(def, err)
	}
	return &Result{
		Status:    StatusSuccess,
		Payload:   payload,
		Source:    def.Source,
		Timestamp: time.Now().UTC(),
	}
}

// errorResult renders a classified failure. The fixed-size truncation policy
// deliberately does not apply here, and every error names its data source.
func errorResult(def *Definition, err error) *Result {
	kind := toolerr.KindOf(err)
	payload := fmt.Sprintf("Error (%s): %s", kind, err.Error())
	if def.Source != "" {
		payload += fmt.Sprintf("\nSource: %s", def.Source)
	}
	return &Result{
		Status:    StatusError,
		Payload:   payload,
		Source:    def.Source,
		Timestamp: time.Now().UTC(),
	}
}
