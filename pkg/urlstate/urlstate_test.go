package urlstate

import (
	"slices"
	"testing"

	"github.com/vango-dev/semiresponsive/pkg/protocol"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		base     string
		keys     []string
		fragment string
	}{
		{"NoQuery", "https://example.com/a", "https://example.com/a", nil, ""},
		{"Simple", "https://example.com/a?view=wide", "https://example.com/a", []string{"view"}, ""},
		{"Multiple", "/a?x=1&y=2&view=n", "/a", []string{"x", "y", "view"}, ""},
		{"Fragment", "/a?view=n#top", "/a", []string{"view"}, "#top"},
		{"FragmentOnly", "/a#top", "/a", nil, "#top"},
		{"EmptyQuery", "/a?", "/a", nil, ""},
		{"SecondQuestionMark", "/a?x=1?y=2", "/a", []string{"x"}, ""},
		{"EmptySegments", "/a?x=1&&y=2&", "/a", []string{"x", "y"}, ""},
		{"Duplicate", "/a?x=1&y=2&x=3", "/a", []string{"x", "y"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := Parse(tt.href)
			if u.Base() != tt.base {
				t.Errorf("Base: got %q, want %q", u.Base(), tt.base)
			}
			if got := u.Keys(); !slices.Equal(got, tt.keys) && !(len(got) == 0 && len(tt.keys) == 0) {
				t.Errorf("Keys: got %v, want %v", got, tt.keys)
			}
			if u.Fragment() != tt.fragment {
				t.Errorf("Fragment: got %q, want %q", u.Fragment(), tt.fragment)
			}
		})
	}
}

func TestGet(t *testing.T) {
	u := Parse("/a?x=1&debug&eq=a=b&x=3&raw=a%20b")

	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{"x", "3", true},
		{"debug", "", true},
		{"eq", "a=b", true},
		{"raw", "a%20b", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		v, ok := u.Get(tt.key)
		if v != tt.value || ok != tt.ok {
			t.Errorf("Get(%q): got (%q, %v), want (%q, %v)", tt.key, v, ok, tt.value, tt.ok)
		}
	}
}

func TestSetDeleteString(t *testing.T) {
	u := Parse("https://example.com/a?lang=en&debug#frag")

	u.Set("view", "wide")
	if got, want := u.String(), "https://example.com/a?lang=en&debug&view=wide#frag"; got != want {
		t.Errorf("after Set: got %q, want %q", got, want)
	}

	u.Set("lang", "de")
	if got, want := u.String(), "https://example.com/a?lang=de&debug&view=wide#frag"; got != want {
		t.Errorf("after overwrite: got %q, want %q", got, want)
	}

	u.Delete("lang")
	u.Delete("debug")
	u.Delete("missing")
	if got, want := u.String(), "https://example.com/a?view=wide#frag"; got != want {
		t.Errorf("after Delete: got %q, want %q", got, want)
	}

	u.Delete("view")
	if got, want := u.String(), "https://example.com/a#frag"; got != want {
		t.Errorf("after deleting last key: got %q, want %q", got, want)
	}
	if u.Len() != 0 || u.Has("view") {
		t.Error("URL should have no parameters left")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, href := range []string{
		"https://example.com/",
		"https://example.com/docs/page.html",
		"/relative/path",
		"",
	} {
		u := Parse(href)
		u.Set("view", "narrow")
		u.Delete("view")
		if u.String() != href {
			t.Errorf("round trip of %q: got %q", href, u.String())
		}
	}

	// Existing parameters survive in order.
	href := "/a?b=1&a=2"
	u := Parse(href)
	u.Set("view", "x")
	u.Delete("view")
	if u.String() != href {
		t.Errorf("round trip of %q: got %q", href, u.String())
	}
}

func TestClone(t *testing.T) {
	u := Parse("/a?x=1")
	c := u.Clone()
	c.Set("x", "2")
	c.Set("y", "3")

	if v, _ := u.Get("x"); v != "1" {
		t.Errorf("original modified through clone: x=%q", v)
	}
	if u.Has("y") {
		t.Error("original gained key through clone")
	}
}

func TestNavigator(t *testing.T) {
	var patches []protocol.Patch
	n := NewNavigator("/a", func(p protocol.Patch) { patches = append(patches, p) })

	n.PushState("/a?view=wide")
	if n.Href() != "/a?view=wide" {
		t.Errorf("Href: got %q", n.Href())
	}
	want := []protocol.Patch{protocol.NewURLPushPatch("/a?view=wide")}
	if !slices.Equal(patches, want) {
		t.Errorf("patches: got %+v, want %+v", patches, want)
	}

	// Without a queue the location still moves.
	quiet := NewNavigator("/a", nil)
	quiet.PushState("/b")
	if quiet.Href() != "/b" {
		t.Errorf("Href without queue: got %q", quiet.Href())
	}
}

func TestStaticLocation(t *testing.T) {
	if StaticLocation("/x?y=1").Href() != "/x?y=1" {
		t.Error("StaticLocation should return itself")
	}
}
