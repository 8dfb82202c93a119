package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/stackflame/pkg/pipeline"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintStats(t *testing.T) {
	stats := pipeline.Stats{FrameCount: 1204, Depth: 37, Matches: 12}
	tests := []struct {
		name   string
		search string
		cached bool
		want   []string
		absent string
	}{
		{"fresh", "", false, []string{"1204 frames", "depth 37", "fresh"}, "matches"},
		{"cached search", "malloc", true, []string{`12 matches for "malloc"`, "cached"}, "fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStdout(t)
			printStats(stats, tt.search, tt.cached)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
			if strings.Contains(out, tt.absent) {
				t.Errorf("output %q should not contain %q", out, tt.absent)
			}
		})
	}
}

func TestPrintHelpers(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("rendered %d files", 2)
	printFile("cpu.svg")
	printKeyValue("Listening", "http://localhost:8080")
	printNextStep("Open", "stackflame view cpu.folded")

	out := buf.String()
	for _, want := range []string{iconSuccess + " rendered 2 files", iconArrow, "cpu.svg", "Listening", "stackflame view cpu.folded"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
	if n := strings.Count(out, "\n"); n != 4 {
		t.Errorf("got %d lines, want 4", n)
	}
}
