package server

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// CacheControl selects the Cache-Control policy for static files.
type CacheControl int

const (
	// CacheControlNone sends no-store, for development.
	CacheControlNone CacheControl = iota
	// CacheControlProduction caches fingerprinted files for a year and
	// everything else for an hour.
	CacheControlProduction
)

// staticFiles serves files from fsys below prefix.
type staticFiles struct {
	fsys   fs.FS
	prefix string
	cache  CacheControl
}

func newStaticFiles(fsys fs.FS, prefix string, cache CacheControl) *staticFiles {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &staticFiles{fsys: fsys, prefix: prefix, cache: cache}
}

// relPath maps a URL path to a file below the root. It rejects traversal
// and absolute-path tricks so serving cannot escape fsys.
func (sf *staticFiles) relPath(urlPath string) (string, bool) {
	if sf == nil || sf.fsys == nil || !strings.HasPrefix(urlPath, sf.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, sf.prefix)
	if rel == "" {
		return "", false
	}

	// %00 and backslashes never name a file we serve.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}

	// "/static//etc/passwd" strips to "/etc/passwd".
	if strings.HasPrefix(rel, "/") {
		return "", false
	}

	// Reject dot-segments before cleaning so they are not cleaned away.
	// Dotfiles and config files are never served either.
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	if isConfigFile(path.Base(rel)) {
		return "", false
	}

	clean := path.Clean(rel)
	if !fs.ValidPath(clean) || clean == "." {
		return "", false
	}
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

// isConfigFile reports whether name is a semiresponsive config file, which
// may carry storage credentials.
func isConfigFile(name string) bool {
	switch strings.ToLower(name) {
	case "semiresponsive.json", "semiresponsive.yaml", "semiresponsive.yml":
		return true
	}
	return false
}

// open returns the regular file behind urlPath.
func (sf *staticFiles) open(urlPath string) (fs.File, fs.FileInfo, string, bool) {
	rel, ok := sf.relPath(urlPath)
	if !ok {
		return nil, nil, "", false
	}
	f, err := sf.fsys.Open(rel)
	if err != nil {
		return nil, nil, "", false
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil, "", false
	}
	return f, info, rel, true
}

// Has reports whether urlPath names a file this handler would serve.
func (sf *staticFiles) Has(urlPath string) bool {
	f, _, _, ok := sf.open(urlPath)
	if ok {
		f.Close()
	}
	return ok
}

// ServeHTTP serves GET and HEAD requests for files.
func (sf *staticFiles) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	f, info, rel, ok := sf.open(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	sf.applyCacheHeaders(w, rel)

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}
		rs = bytes.NewReader(data)
	}
	http.ServeContent(w, r, rel, info.ModTime(), rs)
}

func (sf *staticFiles) applyCacheHeaders(w http.ResponseWriter, rel string) {
	switch sf.cache {
	case CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")

	case CacheControlProduction:
		if isFingerprinted(rel) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		}
	}
}

// isFingerprinted reports whether the name carries a content hash, as in
// "wide.a1b2c3d4.css".
func isFingerprinted(name string) bool {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
