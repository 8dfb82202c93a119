package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
}

func TestShort(t *testing.T) {
	saved := Commit
	defer func() { Commit = saved }()
	fill()
	Commit = "0123456789abcdef"
	if got := Short(); !strings.HasSuffix(got, "(0123456)") {
		t.Errorf("Short() = %q", got)
	}
}
