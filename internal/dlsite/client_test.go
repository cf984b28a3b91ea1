package dlsite_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dust/internal/dlsite"
	"dust/internal/services"
)

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := dlsite.New("", "maniax"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestFetchWorkSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/maniax/product/info/ajax" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("product_id") != "RJ123456" {
			t.Fatalf("expected canonical product_id, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"RJ123456":{"work_name":"Example Quest","maker_name":"Example Soft","work_type":"RPG","age_category":3,"work_image":"//img.dlsite.jp/work/RJ123456_img_main.jpg","regist_date":"2024-06-01 00:00:00","intro_s":"A short adventure.","genre":["RPG","Fantasy"]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := dlsite.New(server.URL, "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	work, err := client.FetchWork(context.Background(), "rj123456")
	if err != nil {
		t.Fatalf("FetchWork returned error: %v", err)
	}
	if work.ProductID != "RJ123456" || work.Title != "Example Quest" {
		t.Fatalf("unexpected work: %#v", work)
	}
	if work.CoverURL != "https://img.dlsite.jp/work/RJ123456_img_main.jpg" {
		t.Fatalf("unexpected cover url: %q", work.CoverURL)
	}
	if work.Developer() != "Example Soft" {
		t.Fatalf("unexpected developer: %q", work.Developer())
	}
	if work.GenreLabel() != "Adult Game" || work.AgeRating() != "R18" {
		t.Fatalf("unexpected derived genre %q / rating %q", work.GenreLabel(), work.AgeRating())
	}
	if len(work.Genres) != 2 || work.Genres[0] != "RPG" {
		t.Fatalf("unexpected genres: %v", work.Genres)
	}
}

func TestFetchWorkSingleGenreAndHostRelativeImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"RE300000":{"work_name":"Quiet One","age_category":1,"work_image":"/resize/RE300000_main.jpg","genre":"Visual Novel"}}`))
	}))
	t.Cleanup(server.Close)

	client, err := dlsite.New(server.URL, "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	work, err := client.FetchWork(context.Background(), "RE300000")
	if err != nil {
		t.Fatalf("FetchWork returned error: %v", err)
	}
	if work.CoverURL != "https://img.dlsite.jp/resize/RE300000_main.jpg" {
		t.Fatalf("unexpected cover url: %q", work.CoverURL)
	}
	if len(work.Genres) != 1 || work.Genres[0] != "Visual Novel" {
		t.Fatalf("unexpected genres: %v", work.Genres)
	}
	if work.Developer() != "Unknown" {
		t.Fatalf("expected developer fallback, got %q", work.Developer())
	}
	if work.GenreLabel() != "Game" || work.AgeRating() != "ALL_AGES" {
		t.Fatalf("unexpected derived genre %q / rating %q", work.GenreLabel(), work.AgeRating())
	}
}

func TestFetchWorkUnknownID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, err := dlsite.New(server.URL, "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.FetchWork(context.Background(), "RJ999999"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestFetchWorkHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client, err := dlsite.New(server.URL, "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.FetchWork(context.Background(), "RJ123456")
	if !errors.Is(err, services.ErrMetadataUnavailable) {
		t.Fatalf("expected metadata unavailable, got %v", err)
	}
	if !services.Recoverable(err) {
		t.Fatalf("expected recoverable error, got %v", err)
	}
}

func TestFetchWorkDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	t.Cleanup(server.Close)

	client, err := dlsite.New(server.URL, "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.FetchWork(context.Background(), "RJ123456"); !errors.Is(err, services.ErrMetadataUnavailable) {
		t.Fatalf("expected metadata unavailable, got %v", err)
	}
}

func TestFetchWorkMalformedIdentifier(t *testing.T) {
	client, err := dlsite.New("https://example.com", "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.FetchWork(context.Background(), "RJ12345"); !errors.Is(err, services.ErrMalformedIdentifier) {
		t.Fatalf("expected malformed identifier error, got %v", err)
	}
}

func TestFetchWorkCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	client, err := dlsite.New(server.URL, "maniax")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := client.FetchWork(ctx, "RJ123456"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
