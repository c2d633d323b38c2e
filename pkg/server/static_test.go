package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStaticFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
	return path
}

func TestStaticFilesPrefix(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "css/wide.css", "body{}")

	sf := newStaticFiles(os.DirFS(dir), "/assets", CacheControlNone)

	rr := httptest.NewRecorder()
	sf.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://example.com/assets/css/wide.css", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "body{}" {
		t.Fatalf("GET /assets/css/wide.css = %d %q", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	if sf.Has("/css/wide.css") {
		t.Error("Has(/css/wide.css) = true outside the prefix")
	}
	if sf.Has("/assets/css") {
		t.Error("Has(/assets/css) = true for a directory")
	}

	rr = httptest.NewRecorder()
	sf.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "http://example.com/assets/css/wide.css", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

func TestStaticFilesTraversal(t *testing.T) {
	root := t.TempDir()
	public := filepath.Join(root, "public")
	writeStaticFile(t, public, "ok.txt", "ok")
	writeStaticFile(t, root, "secret.txt", "secret")

	sf := newStaticFiles(os.DirFS(public), "/", CacheControlNone)

	for _, p := range []string{
		"/../secret.txt",
		"/%2e%2e/secret.txt",
		"/..//secret.txt",
		"/./ok.txt",
		"//ok.txt",
		"/ok.txt%00",
		`/..\secret.txt`,
	} {
		t.Run(p, func(t *testing.T) {
			rr := httptest.NewRecorder()
			sf.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://example.com"+p, nil))
			if rr.Code != http.StatusNotFound {
				t.Errorf("GET %s status = %d, want %d", p, rr.Code, http.StatusNotFound)
			}
		})
	}
}

func TestStaticCacheHeaders(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "wide.a1b2c3d4.css", "a")
	writeStaticFile(t, dir, "wide.css", "b")

	sf := newStaticFiles(os.DirFS(dir), "/", CacheControlProduction)
	tests := []struct {
		path string
		want string
	}{
		{"/wide.a1b2c3d4.css", "public, max-age=31536000, immutable"},
		{"/wide.css", "public, max-age=3600, must-revalidate"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		sf.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://example.com"+tt.path, nil))
		if got := rr.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("GET %s Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsFingerprinted(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"wide.a1b2c3d4.css", true},
		{"css/narrow.DEADBEEF01.css", true},
		{"wide.css", false},
		{"wide.abc.css", false},
		{"wide.zzzzzzzz.css", false},
	}
	for _, tt := range tests {
		if got := isFingerprinted(tt.name); got != tt.want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestServerStaticDir(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "wide.css", ".wide{}")

	_, ts := newTestServer(t, &ServerConfig{StaticDir: dir})

	resp, body := get(t, ts, "/wide.css", nil)
	if resp.StatusCode != http.StatusOK || body != ".wide{}" {
		t.Errorf("GET /wide.css = %d %q", resp.StatusCode, body)
	}

	// Paths that are not files still render the page.
	resp, body = get(t, ts, "/docs/?view=wide", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `href="/wide.css"`) {
		t.Errorf("GET /docs/ = %d, page not rendered:\n%s", resp.StatusCode, body)
	}
}

func TestStaticFilesHidesConfigAndDotfiles(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "index.html", "<html></html>")
	writeStaticFile(t, dir, "wide.css", ".wide{}")
	writeStaticFile(t, dir, "semiresponsive.json", `{"s3":{"secretAccessKey":"TOPSECRET"}}`)
	writeStaticFile(t, dir, "semiresponsive.yaml", "s3:\n  secretAccessKey: TOPSECRET\n")
	writeStaticFile(t, dir, "conf/semiresponsive.yml", "s3: {}\n")
	writeStaticFile(t, dir, ".env", "AWS_SECRET_ACCESS_KEY=TOPSECRET")
	writeStaticFile(t, dir, ".git/config", "[core]")

	_, ts := newTestServer(t, &ServerConfig{StaticDir: dir})

	resp, body := get(t, ts, "/wide.css", nil)
	if resp.StatusCode != http.StatusOK || body != ".wide{}" {
		t.Fatalf("GET /wide.css = %d %q", resp.StatusCode, body)
	}

	for _, p := range []string{
		"/semiresponsive.json",
		"/semiresponsive.yaml",
		"/conf/semiresponsive.yml",
		"/.env",
		"/.git/config",
	} {
		t.Run(p, func(t *testing.T) {
			_, body := get(t, ts, p, nil)
			if strings.Contains(body, "TOPSECRET") || strings.Contains(body, "[core]") {
				t.Errorf("GET %s leaked the file: %q", p, body)
			}
			if !strings.Contains(body, "<html>") {
				t.Errorf("GET %s did not fall through to the page: %q", p, body)
			}
		})
	}
}
