package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thgossler/MyAzUrlShortener/redirect/model"
	"github.com/thgossler/MyAzUrlShortener/redirect/negcache"
	"github.com/thgossler/MyAzUrlShortener/redirect/resolver"
)

type stubStore struct {
	links map[string]*model.Link
}

func (s *stubStore) FetchByCode(ctx context.Context, code string) (*model.Link, error) {
	link, ok := s.links[code]
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (s *stubStore) Upsert(ctx context.Context, link *model.Link) (*model.Link, error) {
	return link, nil
}

func (s *stubStore) AppendClickEvent(code string, clickedAt time.Time) error {
	return nil
}

func newTestApp(t *testing.T, defaultUrl string, links ...*model.Link) *fiber.App {
	t.Helper()

	store := &stubStore{links: make(map[string]*model.Link)}
	for _, link := range links {
		store.links[link.RowKey] = link
	}

	neg := negcache.New(time.Minute, 4*1024*1024, time.Minute)
	res := resolver.New(store, neg, logger, resolver.Options{DefaultRedirectUrl: defaultUrl})
	t.Cleanup(res.Close)

	app := fiber.New()
	app.Get("/metrics", metricsHandler)
	app.Get("/:code?", newRedirectHandler(res, time.Second))
	return app
}

func checkRedirect(t *testing.T, app *fiber.App, path string, expectedLocation string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, expectedLocation, resp.Header.Get("Location"))
}

func TestRedirectRouteKnownCode(t *testing.T) {
	link, err := model.NewLink("https://example.com/landing", "promo", "promo", nil, "")
	require.NoError(t, err)
	app := newTestApp(t, "https://fallback.example", link)

	checkRedirect(t, app, "/promo", "https://example.com/landing")
	// lookup is case-insensitive
	checkRedirect(t, app, "/PROMO", "https://example.com/landing")
}

func TestRedirectRouteUnknownCode(t *testing.T) {
	app := newTestApp(t, "https://fallback.example")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestRedirectRouteBlankCode(t *testing.T) {
	app := newTestApp(t, "https://fallback.example")

	checkRedirect(t, app, "/", "https://fallback.example")
}

func TestMetricsRoute(t *testing.T) {
	app := newTestApp(t, "https://fallback.example")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
