package utils

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RemoteRessource is the content fetched from an URL.
type RemoteRessource struct {
	Content  *bytes.Reader
	MimeType string
	URL      string // after redirections
}

// UrlFetcher fetches the content of an absolute URL.
type UrlFetcher func(url string) (RemoteRessource, error)

var httpClient = &http.Client{Timeout: 20 * time.Second}

// DefaultUrlFetcher supports http(s) and file URLs, and local paths.
func DefaultUrlFetcher(urlTarget string) (RemoteRessource, error) {
	u, err := url.Parse(urlTarget)
	if err != nil {
		return RemoteRessource{}, fmt.Errorf("invalid url %q: %w", urlTarget, err)
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequest(http.MethodGet, urlTarget, nil)
		if err != nil {
			return RemoteRessource{}, err
		}
		req.Header.Set("User-Agent", "Go-CSSBox")
		resp, err := httpClient.Do(req)
		if err != nil {
			return RemoteRessource{}, fmt.Errorf("fetching %s: %w", urlTarget, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return RemoteRessource{}, fmt.Errorf("fetching %s: status %s", urlTarget, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return RemoteRessource{}, fmt.Errorf("reading %s: %w", urlTarget, err)
		}
		mimeType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		return RemoteRessource{Content: bytes.NewReader(data), MimeType: mimeType, URL: resp.Request.URL.String()}, nil
	case "file", "":
		path := u.Path
		if u.Scheme == "" {
			path = urlTarget
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return RemoteRessource{}, fmt.Errorf("reading %s: %w", path, err)
		}
		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if i := strings.IndexByte(mimeType, ';'); i != -1 {
			mimeType = mimeType[:i]
		}
		return RemoteRessource{Content: bytes.NewReader(data), MimeType: mimeType, URL: urlTarget}, nil
	default:
		return RemoteRessource{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
}

// ResolveUrl resolves `rel` against `base`, which may be an URL or a
// local file path. An empty string is returned for an invalid `rel`.
func ResolveUrl(base, rel string) string {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return ""
	}
	r, err := url.Parse(rel)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return rel
	}
	if base == "" {
		return rel
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		// local path
		if filepath.IsAbs(rel) {
			return rel
		}
		return filepath.Join(filepath.Dir(base), filepath.FromSlash(rel))
	}
	return b.ResolveReference(r).String()
}
