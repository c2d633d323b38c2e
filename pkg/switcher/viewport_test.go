package switcher

import "testing"

func TestParseWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"900", 900, true},
		{"900px", 900, true},
		{" 640", 640, true},
		{"12.5", 12, true},
		{"-1", 0, false},
		{"-0", 0, false},
		{" -900px", 0, false},
		{"+20", 20, true},
		{"", 0, false},
		{"px", 0, false},
		{"wide", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseWidth(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("parseWidth(%q): got (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWidth(t *testing.T) {
	w := NewWidth(800)
	if !w.MinWidth(0) || !w.MinWidth(800) || w.MinWidth(801) {
		t.Error("MinWidth boundary check failed")
	}
	w.Set(1200)
	if w.Px() != 1200 {
		t.Errorf("Px: got %d, want 1200", w.Px())
	}
}

func TestConfigMerge(t *testing.T) {
	c := DefaultConfig().Merge(Config{ParamKey: "style", SelectedClass: "on"})
	if c.ParamKey != "style" || c.SelectedClass != "on" {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.ButtonClass != DefaultButtonClass || c.LinkHrefAttr != DefaultLinkHrefAttr {
		t.Errorf("defaults lost: %+v", c)
	}
	if DefaultConfig().Merge(Config{}) != DefaultConfig() {
		t.Error("empty merge should be identity")
	}
}
