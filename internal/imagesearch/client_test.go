package imagesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"menureader/internal/request"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(request.NewClient(), "search-key", "engine-cx")
	if err != nil {
		t.Fatal(err)
	}
	c.SetEndpoint(srv.URL)
	return c
}

func TestSearch_ConvertsHits(t *testing.T) {
	var gotQuery url.Values
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Pho bo","link":"https://img.example/pho.jpg","displayLink":"example.com",
			 "image":{"width":640,"height":480,"thumbnailLink":"https://img.example/pho_t.jpg"}},
			{"title":"broken hit","link":""}
		]}`))
	})

	images, err := c.Search(context.Background(), "Pho", "pho beef noodle soup")
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 1 {
		t.Fatalf("expected the empty-link hit to be dropped, got %d images", len(images))
	}

	img := images[0]
	if img.ID == "" {
		t.Error("expected a generated image id")
	}
	if img.Title != "Pho bo" || img.ImageURL != "https://img.example/pho.jpg" {
		t.Errorf("unexpected conversion %+v", img)
	}
	if img.ThumbnailURL != "https://img.example/pho_t.jpg" || img.SourceURL != "example.com" {
		t.Errorf("unexpected conversion %+v", img)
	}
	if img.Width != 640 || img.Height != 480 {
		t.Errorf("unexpected dimensions %dx%d", img.Width, img.Height)
	}
	if img.DishName != "Pho" || !img.IsLoaded {
		t.Errorf("unexpected dish binding %+v", img)
	}

	for param, want := range map[string]string{
		"key":        "search-key",
		"cx":         "engine-cx",
		"q":          "pho beef noodle soup",
		"searchType": "image",
		"safe":       "active",
		"imgType":    "photo",
		"imgSize":    "medium",
		"num":        "4",
	} {
		if got := gotQuery.Get(param); got != want {
			t.Errorf("param %s: expected %q, got %q", param, want, got)
		}
	}
}

func TestSearch_EmptyQueryFallsBackToDishName(t *testing.T) {
	var gotQ string
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	})

	images, err := c.Search(context.Background(), "Bun Cha", "")
	if err != nil {
		t.Fatal(err)
	}
	if gotQ != "Bun Cha" {
		t.Errorf("expected dish name as query, got %q", gotQ)
	}
	if len(images) != 0 {
		t.Errorf("expected no images, got %d", len(images))
	}
}

func TestSearch_UpstreamErrorSurfaced(t *testing.T) {
	c := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), "Pho", "")
	var apiErr *request.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != request.KindForbidden {
		t.Fatalf("expected forbidden APIError, got %v", err)
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(request.NewClient(), "", "cx"); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := NewClient(request.NewClient(), "key", ""); err == nil {
		t.Error("expected error for missing cx")
	}
}
