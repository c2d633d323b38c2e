// Package urlstate keeps the query-string state of the current page.
//
// A ParsedURL splits a location into the part before the first '?', an
// ordered list of query parameters and an optional '#fragment'. Values are
// kept exactly as they appear in the URL: nothing is percent-decoded on
// parse and nothing is encoded on String, so a value read from a button
// attribute round-trips verbatim.
//
// Example:
//
//	u := urlstate.Parse("https://example.com/docs?lang=en")
//	u.Set("view", "wide")
//	u.String() // "https://example.com/docs?lang=en&view=wide"
//	u.Delete("view")
//	u.String() // "https://example.com/docs?lang=en"
package urlstate

import "strings"

type param struct {
	key   string
	value string
	bare  bool // "?flag" with no '='
}

// ParsedURL is a location split into base, ordered parameters and fragment.
// The zero value is an empty URL.
type ParsedURL struct {
	base     string
	params   []param
	fragment string
}

// Parse splits href. It never fails: anything that is not a query string
// stays in the base.
//
// Only the text between the first '?' and the next '?' or '#' is treated
// as the query. Repeated keys keep the position of their first occurrence
// and the value of their last. Empty segments ("a=1&&b=2") are skipped.
func Parse(href string) *ParsedURL {
	u := &ParsedURL{}

	if i := strings.IndexByte(href, '#'); i >= 0 {
		u.fragment = href[i:]
		href = href[:i]
	}

	base, query, _ := strings.Cut(href, "?")
	u.base = base
	query, _, _ = strings.Cut(query, "?")
	if query == "" {
		return u
	}

	for _, segment := range strings.Split(query, "&") {
		if segment == "" {
			continue
		}
		key, value, hasEq := strings.Cut(segment, "=")
		u.set(key, value, !hasEq)
	}
	return u
}

// Base returns everything before the query string.
func (u *ParsedURL) Base() string {
	return u.base
}

// Fragment returns the '#fragment' suffix including the '#', or "".
func (u *ParsedURL) Fragment() string {
	return u.fragment
}

// Get returns the raw value for key. A bare key ("?debug") reports
// ("", true).
func (u *ParsedURL) Get(key string) (string, bool) {
	if i := u.index(key); i >= 0 {
		return u.params[i].value, true
	}
	return "", false
}

// Has reports whether key is present.
func (u *ParsedURL) Has(key string) bool {
	return u.index(key) >= 0
}

// Set assigns value to key. An existing key keeps its position; a new key
// is appended.
func (u *ParsedURL) Set(key, value string) {
	u.set(key, value, false)
}

// Delete removes key. Deleting a missing key is a no-op.
func (u *ParsedURL) Delete(key string) {
	if i := u.index(key); i >= 0 {
		u.params = append(u.params[:i], u.params[i+1:]...)
	}
}

// Keys returns the parameter keys in URL order.
func (u *ParsedURL) Keys() []string {
	keys := make([]string, len(u.params))
	for i, p := range u.params {
		keys[i] = p.key
	}
	return keys
}

// Len returns the number of parameters.
func (u *ParsedURL) Len() int {
	return len(u.params)
}

// Query returns the serialized query string without the leading '?'.
func (u *ParsedURL) Query() string {
	var b strings.Builder
	for i, p := range u.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		if !p.bare {
			b.WriteByte('=')
			b.WriteString(p.value)
		}
	}
	return b.String()
}

// String reassembles the URL. With no parameters the result is the base
// followed by the fragment, without a dangling '?'.
func (u *ParsedURL) String() string {
	q := u.Query()
	if q == "" {
		return u.base + u.fragment
	}
	return u.base + "?" + q + u.fragment
}

// Clone returns an independent copy.
func (u *ParsedURL) Clone() *ParsedURL {
	c := *u
	c.params = append([]param(nil), u.params...)
	return &c
}

func (u *ParsedURL) set(key, value string, bare bool) {
	if i := u.index(key); i >= 0 {
		u.params[i].value = value
		u.params[i].bare = bare
		return
	}
	u.params = append(u.params, param{key: key, value: value, bare: bare})
}

func (u *ParsedURL) index(key string) int {
	for i, p := range u.params {
		if p.key == key {
			return i
		}
	}
	return -1
}
