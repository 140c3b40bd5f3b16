package server

import (
	"context"
	"testing"

	"toolbridge/internal/tool"
)

func TestMCPToolCarriesReadOnlyHint(t *testing.T) {
	noop := func(ctx context.Context, args tool.Args) (string, error) { return "", nil }

	readOnly := &tool.Definition{
		Name:        "lookup_thing",
		Description: "Read something upstream",
		Source:      "Some API",
		ReadOnly:    true,
		Schema:      tool.Schema{"id": {Type: tool.TypeString, Required: true}},
		Handler:     noop,
	}
	mutating := &tool.Definition{
		Name:        "change_thing",
		Description: "Write something upstream",
		Source:      "Some API",
		Schema:      tool.Schema{"id": {Type: tool.TypeString, Required: true}},
		Handler:     noop,
	}

	mt := mcpTool(readOnly)
	if mt.Annotations == nil || !mt.Annotations.ReadOnlyHint {
		t.Errorf("read-only tool %q should carry ReadOnlyHint", readOnly.Name)
	}
	mt = mcpTool(mutating)
	if mt.Annotations == nil || mt.Annotations.ReadOnlyHint {
		t.Errorf("mutating tool %q must not carry ReadOnlyHint", mutating.Name)
	}
	if mt.Name != "change_thing" || mt.InputSchema == nil {
		t.Errorf("wire tool = %+v", mt)
	}
}
