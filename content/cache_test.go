package content

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/khobor/portal/cms"
)

type stubCMS struct {
	srv           *httptest.Server
	categoryCalls int64
	articleCalls  int64
}

func newStubCMS(t *testing.T) *stubCMS {
	t.Helper()
	stub := &stubCMS{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), "categories") {
			atomic.AddInt64(&stub.categoryCalls, 1)
			w.Write([]byte(`{"data":{"categories":[{"documentId":"cat-1","name":"Politics","slug":"politics"}]}}`))
			return
		}
		atomic.AddInt64(&stub.articleCalls, 1)
		w.Write([]byte(`{"data":{"articles":[{"documentId":"art-1","title":"Headline","slug":"headline"}]}}`))
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *stubCMS) {
	t.Helper()
	stub := newStubCMS(t)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	client := &cms.Client{URL: stub.srv.URL, HTTP: http.DefaultClient, Logger: logger}
	return NewCache(client, nil, logger, ttl), stub
}

func TestCache_ReadThrough(t *testing.T) {
	cache, stub := newTestCache(t, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		categories, err := cache.Categories(ctx)
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		if len(categories) != 1 || categories[0].Slug != "politics" {
			t.Fatalf("unexpected categories: %+v", categories)
		}
	}
	if got := atomic.LoadInt64(&stub.categoryCalls); got != 1 {
		t.Errorf("repeated reads should hit the cache, cms saw %d calls", got)
	}
}

func TestCache_ArticleKeysPerCategory(t *testing.T) {
	cache, stub := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, err := cache.Articles(ctx, ""); err != nil {
		t.Fatalf("front page: %v", err)
	}
	if _, err := cache.Articles(ctx, "politics"); err != nil {
		t.Fatalf("politics: %v", err)
	}
	if _, err := cache.Articles(ctx, "politics"); err != nil {
		t.Fatalf("politics again: %v", err)
	}
	if got := atomic.LoadInt64(&stub.articleCalls); got != 2 {
		t.Errorf("front page and category are separate entries, cms saw %d calls", got)
	}
}

func TestCache_ExpiryRefetches(t *testing.T) {
	cache, stub := newTestCache(t, 10*time.Millisecond)
	ctx := context.Background()

	if _, err := cache.Categories(ctx); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := cache.Categories(ctx); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&stub.categoryCalls); got != 2 {
		t.Errorf("expired entry should refetch, cms saw %d calls", got)
	}
}

func TestCache_InvalidateAndRefetch(t *testing.T) {
	cache, stub := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, err := cache.Categories(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.Articles(ctx, ""); err != nil {
		t.Fatal(err)
	}

	if err := cache.Refetch(ctx); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got := atomic.LoadInt64(&stub.categoryCalls); got != 2 {
		t.Errorf("refetch should rewarm categories, cms saw %d calls", got)
	}
	if got := atomic.LoadInt64(&stub.articleCalls); got != 2 {
		t.Errorf("refetch should rewarm the front page, cms saw %d calls", got)
	}

	// The rewarmed entries serve the next read without another fetch.
	if _, err := cache.Categories(ctx); err != nil {
		t.Fatal(err)
	}
	if got := atomic.LoadInt64(&stub.categoryCalls); got != 2 {
		t.Errorf("rewarmed entry should be a hit, cms saw %d calls", got)
	}
}

func TestService_Endpoints(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	service := &Service{Cache: cache, Logger: logger}

	app := fiber.New()
	app.Get("/categories", service.GetCategories)
	app.Get("/articles", service.GetArticles)
	app.Post("/cache/invalidate", service.InvalidateCache)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/categories"},
		{fiber.MethodGet, "/articles"},
		{fiber.MethodGet, "/articles?category=politics"},
		{fiber.MethodPost, "/cache/invalidate"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tc.method, tc.path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s %s: status %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestService_CMSFailure(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := &cms.Client{URL: srv.URL, HTTP: http.DefaultClient, Logger: logger}
	service := &Service{Cache: NewCache(client, nil, logger, time.Minute), Logger: logger}

	app := fiber.New()
	app.Get("/articles", service.GetArticles)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/articles", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("unreachable cms should map to 502, got %d", resp.StatusCode)
	}
}
