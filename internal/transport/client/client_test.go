package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joshdurbin/shortlinks/internal/clock"
	"github.com/joshdurbin/shortlinks/internal/domain"
	"github.com/joshdurbin/shortlinks/internal/ratelimit"
	"github.com/joshdurbin/shortlinks/internal/service/mocks"
	httpTransport "github.com/joshdurbin/shortlinks/internal/transport/http"
)

func newTestServer(t *testing.T) (*Client, *mocks.LinkService) {
	t.Helper()

	links := new(mocks.LinkService)
	clk := clock.NewFake(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	handler := httpTransport.NewHandler(links, ratelimit.New(clk, 20), "https://sho.rt", zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/urls", handler.CreateLink)
	mux.HandleFunc("/api/urls/", handler.LinksDetailHandler)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(server.URL), links
}

func TestClientCreateLink(t *testing.T) {
	client, links := newTestServer(t)

	created := &domain.Link{
		ID:          "link-1",
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/page",
		CreatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		IsActive:    true,
	}
	links.On("Create", mock.Anything, mock.MatchedBy(func(req domain.CreateLinkRequest) bool {
		return req.OriginalURL == "https://example.com/page" && req.CustomAlias == "my-link"
	})).Return(created, nil)

	resp, err := client.CreateLink(context.Background(), "https://example.com/page", "my-link", nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.ShortCode)
	assert.Equal(t, "https://sho.rt/r/abc123", resp.ShortURL)
}

func TestClientCreateLinkErrorEnvelope(t *testing.T) {
	client, links := newTestServer(t)

	links.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrAliasConflict)

	_, err := client.CreateLink(context.Background(), "https://example.com/page", "taken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
}

func TestClientGetLink(t *testing.T) {
	client, links := newTestServer(t)

	stored := &domain.Link{ID: "link-1", ShortCode: "abc123", OriginalURL: "https://example.com", IsActive: true, ClickCount: 7}
	links.On("Get", mock.Anything, "abc123").Return(stored, nil)

	link, err := client.GetLink(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.ClickCount)
}

func TestClientGetLinkNotFound(t *testing.T) {
	client, links := newTestServer(t)

	links.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := client.GetLink(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClientSetStatus(t *testing.T) {
	client, links := newTestServer(t)

	updated := &domain.Link{ID: "link-1", ShortCode: "abc123", IsActive: false}
	links.On("SetActive", mock.Anything, "abc123", false).Return(updated, nil)

	link, err := client.SetStatus(context.Background(), "abc123", false)
	require.NoError(t, err)
	assert.False(t, link.IsActive)
}

func TestClientDeleteLink(t *testing.T) {
	client, links := newTestServer(t)

	links.On("Delete", mock.Anything, "abc123").Return(true, nil)

	assert.NoError(t, client.DeleteLink(context.Background(), "abc123"))
}

func TestClientGetStats(t *testing.T) {
	client, links := newTestServer(t)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	stats := &domain.Stats{
		ShortCode:   "abc123",
		TotalClicks: 12,
		FromUTC:     from,
		ToUTC:       to,
		Daily:       []domain.DailyClicks{{DateUTC: "2025-06-10", Clicks: 12}},
	}
	links.On("Stats", mock.Anything, "abc123", &from, &to).Return(stats, nil)

	got, err := client.GetStats(context.Background(), "abc123", &from, &to)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.TotalClicks)
	require.Len(t, got.Daily, 1)
}
