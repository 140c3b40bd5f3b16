package logger

import (
	"strings"
	"testing"
	"time"
)

func TestClip(t *testing.T) {
	if got := Clip("short", 200); got != "short" {
		t.Errorf("Clip(short) = %q", got)
	}
	got := Clip("line one\nline two\nline three\n", 200)
	if got != "line one\nline two\n..." {
		t.Errorf("Clip three lines = %q", got)
	}
	got = Clip(strings.Repeat("x", 300), 200)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("Clip long line = %d chars, %q...", len(got), got[:10])
	}
}

func TestToolResultPreviewOnlyInDebug(t *testing.T) {
	payload := "# Result\nfirst line\nsecond line"

	var buf strings.Builder
	l := New(&buf, LevelTool)
	l.SetColorMode(false)
	l.ToolResult("get_distance", "success", payload, 12*time.Millisecond)
	out := buf.String()
	if !strings.Contains(out, "done get_distance status=success chars=31") {
		t.Errorf("tool-level output = %q", out)
	}
	if strings.Contains(out, "output:") {
		t.Errorf("tool-level output should not carry a preview: %q", out)
	}

	buf.Reset()
	l = New(&buf, LevelDebug)
	l.SetColorMode(false)
	l.ToolResult("get_distance", "success", payload, 12*time.Millisecond)
	out = buf.String()
	if !strings.Contains(out, "output: # Result\nfirst line\n...") {
		t.Errorf("debug output missing clipped preview: %q", out)
	}
	if strings.Contains(out, "second line") {
		t.Errorf("preview should be clipped: %q", out)
	}
}
