package styles

import "testing"

func TestFlagsOf(t *testing.T) {
	f := FlagsOf(false, true, false, true, false, false, false, true)
	if !f.Has(Highlighting) || !f.Has(Hovered) || !f.Has(Partial) {
		t.Errorf("FlagsOf() = %v, missing bits", f)
	}
	if f.Has(Minimap) || f.Has(Focused) {
		t.Errorf("FlagsOf() = %v, unexpected bits", f)
	}
	if got := f.String(); got != "highlighting|hovered|partial" {
		t.Errorf("String() = %q", got)
	}
	if Flags(0).String() != "none" {
		t.Error("zero flags should print none")
	}
	if f.With(Hovered, false).Has(Hovered) {
		t.Error("With(false) should clear the bit")
	}
}

func TestShouldDim(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		want  bool
	}{
		{"nothing active", 0, false},
		{"highlight miss", Highlighting, true},
		{"highlight hit", Highlighting | Highlighted, false},
		{"focus outside", Focusing, true},
		{"focus inside", Focusing | Focused, false},
		{"both, matches highlight only", Highlighting | Highlighted | Focusing, false},
		{"both, inside focus only", Highlighting | Focusing | Focused, false},
		{"both, neither", Highlighting | Focusing, true},
		{"both, both", Highlighting | Highlighted | Focusing | Focused, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.ShouldDim(); got != tt.want {
				t.Errorf("(%v).ShouldDim() = %v, want %v", tt.flags, got, tt.want)
			}
		})
	}
}
