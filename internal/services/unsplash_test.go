package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/pkg/logger"
)

type stubTranslator struct {
	mu    sync.Mutex
	out   string
	err   error
	calls int
}

func (s *stubTranslator) Translate(ctx context.Context, text, sourceLanguage string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.out, s.err
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// newUnsplashServer serves /photos/random and /img.png, recording the queries it sees.
func newUnsplashServer(t *testing.T, status int, queries *[]string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photos/random":
			if queries != nil {
				*queries = append(*queries, r.URL.Query().Get("query"))
			}
			if r.URL.Query().Get("orientation") != "landscape" || r.URL.Query().Get("client_id") != "key" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
			fmt.Fprintf(w, `{"urls":{"regular":"%s/img.png"}}`, srv.URL)
		case "/img.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngHeader)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func unsplashConfig(baseURL, key string) *config.Config {
	return &config.Config{UnsplashBaseURL: baseURL, UnsplashAccessKey: key, HTTPTimeoutSeconds: 5}
}

func TestFetchImage_Success(t *testing.T) {
	var queries []string
	srv := newUnsplashServer(t, http.StatusOK, &queries)
	tr := &stubTranslator{out: "water cycle"}
	c := NewUnsplashClient(unsplashConfig(srv.URL, "key"), tr, logger.Nop())

	res := c.FetchImage(context.Background(), "Science Water Cycle", "English")
	if !res.Present() {
		t.Fatalf("Expected image, got reason %v", res.Reason)
	}
	if res.Image.MimeType != "image/png" {
		t.Errorf("Expected image/png, got %q", res.Image.MimeType)
	}
	if tr.calls != 0 {
		t.Errorf("English queries must not be translated, got %d calls", tr.calls)
	}
	if len(queries) != 1 || queries[0] != "Science Water Cycle" {
		t.Errorf("Unexpected queries %v", queries)
	}
}

func TestFetchImage_Translation(t *testing.T) {
	var queries []string
	srv := newUnsplashServer(t, http.StatusOK, &queries)

	tr := &stubTranslator{out: "water cycle"}
	c := NewUnsplashClient(unsplashConfig(srv.URL, "key"), tr, logger.Nop())
	if res := c.FetchImage(context.Background(), "जल चक्र", "Hindi"); !res.Present() {
		t.Fatalf("Expected image, got %v", res.Reason)
	}

	failing := &stubTranslator{err: errors.New("provider down")}
	c = NewUnsplashClient(unsplashConfig(srv.URL, "key"), failing, logger.Nop())
	if res := c.FetchImage(context.Background(), "जल चक्र", "Hindi"); !res.Present() {
		t.Fatalf("Translation failure should fall back, got %v", res.Reason)
	}

	if len(queries) != 2 || queries[0] != "water cycle" || queries[1] != "जल चक्र" {
		t.Errorf("Unexpected queries %v", queries)
	}
}

func TestFetchImage_Absent(t *testing.T) {
	srv := newUnsplashServer(t, http.StatusForbidden, nil)

	c := NewUnsplashClient(unsplashConfig(srv.URL, "key"), nil, logger.Nop())
	res := c.FetchImage(context.Background(), "Math", "English")
	if res.Present() || res.Reason == nil {
		t.Error("Expected absent image with reason on non-200")
	}

	c = NewUnsplashClient(unsplashConfig(srv.URL, ""), nil, logger.Nop())
	res = c.FetchImage(context.Background(), "Math", "English")
	if !errors.Is(res.Reason, ErrImagesDisabled) {
		t.Errorf("Expected ErrImagesDisabled, got %v", res.Reason)
	}
}

func TestFetchImage_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"urls":{}}`))
	}))
	defer srv.Close()

	c := NewUnsplashClient(unsplashConfig(srv.URL, "key"), nil, logger.Nop())
	if res := c.FetchImage(context.Background(), "Math", "English"); res.Present() {
		t.Error("Expected absent image when urls.regular is missing")
	}
}
