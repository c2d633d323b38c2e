package server

import (
	"net/http"
	"strconv"
	"strings"
)

// acceptCH lists the client hints the page handler asks browsers for.
const acceptCH = "Sec-CH-Viewport-Width, Viewport-Width"

// viewportWidth reads the viewport width client hint, falling back to def
// when the browser sent none or sent garbage.
func viewportWidth(r *http.Request, def int) int {
	for _, name := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		v := strings.TrimSpace(r.Header.Get(name))
		if v == "" {
			continue
		}
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// requestHref rebuilds the absolute URL the browser requested. The query
// string is kept raw so the switcher sees exactly what location.href holds.
func requestHref(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
