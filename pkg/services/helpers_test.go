package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"hugo-directus/pkg/directus"
)

const (
	photoID   = "8f14e45f-ceea-467f-a0e6-1d2b3c4d5e6f"
	privateID = "c9f0f895-fb98-4ab9-a1f2-0123456789ab"
	brokenID  = "45c48cce-2e2d-4fbd-b3a1-fedcba987654"
	plainID   = "d3d94468-02a4-4b5c-9e1d-aabbccddeeff"
)

// fakeCMS is a minimal Directus stand-in.
type fakeCMS struct {
	t           *testing.T
	collections string
	items       map[string]string

	mu     sync.Mutex
	logins int
	hits   map[string]int
}

func newFakeCMS(t *testing.T, collections string, items map[string]string) (*fakeCMS, *directus.Client) {
	t.Helper()
	f := &fakeCMS{t: t, collections: collections, items: items, hits: map[string]int{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, directus.NewClient(srv.URL, nil)
}

func (f *fakeCMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/auth/login":
		f.mu.Lock()
		f.logins++
		f.mu.Unlock()
		w.Write([]byte(`{"data":{"access_token":"token","refresh_token":"refresh","expires":900000}}`))
	case r.URL.Path == "/collections":
		w.Write([]byte(f.collections))
	case strings.HasPrefix(r.URL.Path, "/items/"):
		body, ok := f.items[strings.TrimPrefix(r.URL.Path, "/items/")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(body))
	case r.URL.Path == "/assets/"+photoID:
		w.Header().Set("Content-Disposition", `attachment; filename="photo.jpg"`)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	case r.URL.Path == "/assets/"+plainID:
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	case r.URL.Path == "/assets/"+privateID:
		w.WriteHeader(http.StatusForbidden)
	case r.URL.Path == "/assets/"+brokenID:
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeCMS) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeCMS) loginCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins
}

func anonymousSession(t *testing.T, client *directus.Client) *directus.Session {
	t.Helper()
	session := client.Anonymous()
	require.NotNil(t, session)
	return session
}

var _ Backend = (*directus.Session)(nil)
